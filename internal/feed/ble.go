package feed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"tinygo.org/x/bluetooth"
)

// BLEOptions configures the RSSI distance model.
type BLEOptions struct {
	MeasuredPower float64 // RSSI at 1 m, dBm
	PathLossExp   float64
}

// BLE scans for Bluetooth Low Energy advertisements and plots each device
// at a bearing derived from its address.
type BLE struct {
	cfg     Config
	opts    BLEOptions
	adapter *bluetooth.Adapter
	store   *Store
	pub     *publisher
	running atomic.Bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewBLE creates a scanner on the default adapter.
func NewBLE(opts BLEOptions, cfg Config) *BLE {
	cfg = cfg.withDefaults()
	store := NewStore(cfg.Clock, cfg.Smoothing)
	return &BLE{
		cfg:     cfg,
		opts:    opts,
		adapter: bluetooth.DefaultAdapter,
		store:   store,
		pub:     newPublisher("ble", store, cfg),
	}
}

// Name identifies the source.
func (b *BLE) Name() string { return "ble" }

// Start enables the adapter and scans in the background.
func (b *BLE) Start(ctx context.Context, out Sender) error {
	if err := b.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})
	b.running.Store(true)

	go func() {
		err := b.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			if !b.running.Load() {
				return
			}
			b.store.Upsert(b.reading(result))
		})
		if err != nil && b.running.Load() {
			b.pub.log.WithError(err).Error("scan stopped")
			out.Send(ErrorMsg{Source: b.Name(), Err: err})
		}
	}()
	go func() {
		defer close(b.done)
		b.pub.loop(ctx, out, nil)
	}()
	return nil
}

func (b *BLE) reading(result bluetooth.ScanResult) Reading {
	mac := result.Address.String()
	name := result.LocalName()
	if name == "" {
		if mfrs := result.ManufacturerData(); len(mfrs) > 0 {
			if mfr := LookupManufacturer(mfrs[0].CompanyID); mfr != "" && len(mac) >= 17 {
				name = mfr + " " + mac[12:]
			}
		}
	}
	rssi := float64(result.RSSI)
	return Reading{
		ID:        mac,
		Label:     name,
		Class:     "ble",
		Direction: MacToBearing(mac),
		Distance:  RSSIToDistance(rssi, b.opts.MeasuredPower, b.opts.PathLossExp),
		Intensity: RSSIToIntensity(rssi),
	}
}

// Stop halts scanning and publishing.
func (b *BLE) Stop() {
	if !b.running.Swap(false) {
		return
	}
	_ = b.adapter.StopScan()
	b.cancel()
	<-b.done
}

// MacToBearing derives a stable bearing in degrees from an address.
func MacToBearing(mac string) float64 {
	h := sha256.Sum256([]byte(mac))
	val := binary.BigEndian.Uint32(h[:4])
	return float64(val) / (float64(math.MaxUint32) + 1) * 360
}

// RSSIToDistance estimates meters with the log-distance path loss model:
// d = 10^((measuredPower - rssi) / (10 * n)).
func RSSIToDistance(rssi, measuredPower, pathLossExp float64) float64 {
	if rssi >= 0 || pathLossExp <= 0 {
		return 0.1
	}
	return math.Max(0.1, math.Pow(10, (measuredPower-rssi)/(10*pathLossExp)))
}

// RSSIToIntensity maps -100..-30 dBm onto 0..1.
func RSSIToIntensity(rssi float64) float64 {
	return math.Max(0, math.Min(1, (rssi+100)/70))
}
