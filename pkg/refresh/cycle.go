/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mfreeman451/meshradar/pkg/compute"
	"github.com/mfreeman451/meshradar/pkg/metrics"
	"github.com/mfreeman451/meshradar/pkg/models"
	"github.com/mfreeman451/meshradar/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Stages label per-network failures in logs and metrics.
const (
	stageDevices  = "devices"
	stageNodes    = "nodes"
	stageInfo     = "info"
	stageStore    = "store"
	stageIncident = "incidents"
	stageMetric   = "metrics"
	stageAlert    = "alerts"
	stagePanic    = "panic"
)

// noSignalDBM stands in for the average signal of a network without valid
// wireless readings when scoring.
const noSignalDBM = -90.0

// ErrFetchDevices marks a network skipped because its device list could not
// be fetched.
var ErrFetchDevices = errors.New("failed to fetch devices")

// fetchResult holds one network's raw telemetry. Node and info failures
// degrade the cycle; a device failure skips the network.
type fetchResult struct {
	devices  []telemetry.RawDevice
	nodes    []telemetry.RawNode
	nodesErr error
	info     *telemetry.NetworkInfo
	infoErr  error
}

// networkResult is what one network contributes to the combined cache.
type networkResult struct {
	entry   *models.NetworkCache
	signals []float64
	alerts  []models.Alert
}

// RefreshCycle refreshes every active network and rebuilds the combined
// cache. It returns false without doing anything when another cycle is
// running. Failures are logged; none escape.
func (e *Engine) RefreshCycle(ctx context.Context) bool {
	if !e.cycleMu.TryLock() {
		log.Printf("Cache refresh already in progress, skipping duplicate request")
		e.collect.Skipped.Inc()

		return false
	}
	defer e.cycleMu.Unlock()

	now := e.clock()
	timer := prometheus.NewTimer(e.collect.CycleDuration)
	ev := CycleEvent{CycleID: uuid.NewString(), StartedAt: now}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Refresh cycle %s failed: %v", ev.CycleID, r)
			e.touchCombined(e.clock())
		}

		e.saveSnapshot()
		timer.ObserveDuration()
		e.collect.Cycles.Inc()

		ev.FinishedAt = e.clock()
		e.publish(ev)
	}()

	networks := e.networks.ActiveNetworks()
	if len(networks) == 0 {
		log.Printf("No active networks configured")

		return true
	}

	log.Printf("Starting refresh cycle %s for %d networks", ev.CycleID, len(networks))

	results := make([]*networkResult, 0, len(networks))

	for i := range networks {
		res, summary := e.refreshNetwork(ctx, now, &networks[i])
		ev.Networks = append(ev.Networks, summary)

		if res != nil {
			results = append(results, res)
			ev.Alerts = append(ev.Alerts, res.alerts...)
		}
	}

	combined := e.rebuildCombined(now, len(networks), results)

	log.Printf("Refresh cycle %s updated %d of %d networks, %d total devices",
		ev.CycleID, len(results), len(networks), combined)

	return true
}

// refreshNetwork runs every per-network step. A nil result means the network
// contributed nothing this cycle and its cache entry was left as is.
func (e *Engine) refreshNetwork(
	ctx context.Context, now time.Time, network *models.MonitoredNetwork) (res *networkResult, summary NetworkSummary) {
	summary = NetworkSummary{NetworkID: network.ID}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Refresh of network %s panicked: %v", network.ID, r)
			e.networkError(network.ID, stagePanic)

			res = nil
			summary.Updated = false
			summary.Error = fmt.Sprint(r)
		}
	}()

	if err := e.store.UpsertNetwork(ctx, network); err != nil {
		log.Printf("Failed to sync network %s to store: %v", network.ID, err)
		e.networkError(network.ID, stageStore)
	}

	fetched, err := e.fetch(ctx, network.ID)
	if err != nil {
		log.Printf("Skipping network %s this cycle: %v", network.ID, err)
		e.networkError(network.ID, stageDevices)

		summary.Error = err.Error()

		return nil, summary
	}

	if len(fetched.devices) == 0 {
		log.Printf("No devices returned for network %s, keeping cached data", network.ID)

		return nil, summary
	}

	if fetched.nodesErr != nil {
		log.Printf("Node health check failed for network %s: %v", network.ID, fetched.nodesErr)
		e.networkError(network.ID, stageNodes)
	}

	if fetched.infoErr != nil {
		log.Printf("Network info fetch failed for network %s: %v", network.ID, fetched.infoErr)
		e.networkError(network.ID, stageInfo)
	}

	entry := e.entryFor(network)
	prior := entry.PrevHealth
	priorDevices := entry.TotalDevices

	res = buildNetwork(now, network, entry, fetched)

	e.updateIncidents(ctx, now, network.ID, prior, entry, priorDevices)
	e.recordMetric(ctx, now, entry, res.signals)

	e.mu.Lock()
	e.cache.Networks[network.ID] = entry
	e.mu.Unlock()

	e.collect.NetworkHealth.WithLabelValues(network.ID).Set(metrics.HealthValue(string(entry.HealthStatus)))
	e.collect.NetworkDevices.WithLabelValues(network.ID, "wireless").Set(float64(entry.WirelessDevices))
	e.collect.NetworkDevices.WithLabelValues(network.ID, "wired").Set(float64(entry.WiredDevices))

	result := e.alerts.Process(ctx, network.ID, entry.NetworkName, entry.HealthStatus, entry.BandwidthUtilization)
	for _, em := range result.Emitted {
		e.collect.Alerts.WithLabelValues(string(em.Alert.Type)).Inc()

		if em.Err() != nil {
			e.networkError(network.ID, stageAlert)
		}

		res.alerts = append(res.alerts, *em.Alert)
	}

	summary.Updated = true
	summary.HealthStatus = entry.HealthStatus
	summary.TotalDevices = entry.TotalDevices

	return res, summary
}

// fetch pulls devices, nodes and network info concurrently. A panic in any
// fetch is re-raised on the calling goroutine once the others finish.
func (e *Engine) fetch(ctx context.Context, networkID string) (*fetchResult, error) {
	res := &fetchResult{}
	g, gctx := errgroup.WithContext(ctx)

	goRecover(g, func() error {
		devices, err := e.source.FetchDevices(gctx, networkID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFetchDevices, err)
		}

		res.devices = devices

		return nil
	})

	goRecover(g, func() error {
		res.nodes, res.nodesErr = e.source.FetchNodes(gctx, networkID)

		return nil
	})

	goRecover(g, func() error {
		res.info, res.infoErr = e.source.FetchNetworkInfo(gctx, networkID)

		return nil
	})

	if err := g.Wait(); err != nil {
		var p fetchPanic
		if errors.As(err, &p) {
			panic(p.value)
		}

		return nil, err
	}

	return res, nil
}

type fetchPanic struct {
	value any
}

func (p fetchPanic) Error() string {
	return fmt.Sprintf("fetch panicked: %v", p.value)
}

func goRecover(g *errgroup.Group, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fetchPanic{value: r}
			}
		}()

		return fn()
	})
}

// entryFor returns a private copy of the network's cache entry, creating one
// on first sight.
func (e *Engine) entryFor(network *models.MonitoredNetwork) *models.NetworkCache {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if n, ok := e.cache.Networks[network.ID]; ok {
		entry := n.Clone()
		entry.NetworkName = network.DisplayName()

		return entry
	}

	return models.NewNetworkCache(network.ID, network.DisplayName())
}

// buildNetwork derives the cycle's view of one network into entry.
func buildNetwork(
	now time.Time, network *models.MonitoredNetwork, entry *models.NetworkCache, f *fetchResult) *networkResult {
	osCounts := zeroOSCounts()
	bandCounts := zeroBandCounts()
	devices := make([]models.DeviceInfo, 0, len(f.devices))

	var (
		signals  []float64
		wireless int
	)

	for i := range f.devices {
		d := &f.devices[i]
		if !d.ActiveAt(now, ActiveWindow) {
			continue
		}

		info, dbm, valid := deviceInfo(d, network)
		devices = append(devices, info)
		osCounts[info.OS]++

		if d.Wireless {
			wireless++

			if _, tracked := bandCounts[info.FrequencyBand]; tracked {
				bandCounts[info.FrequencyBand]++
			}
		}

		if valid {
			signals = append(signals, dbm)
		}
	}

	total := len(devices)

	entry.Devices = devices
	entry.DeviceOS = osCounts
	entry.Frequency = bandCounts
	entry.TotalDevices = total
	entry.WirelessDevices = wireless
	entry.WiredDevices = total - wireless

	entry.Connected.Add(models.ConnectedSample{Timestamp: now, Count: total, WirelessCount: wireless})

	avgSignal := noSignalDBM
	if len(signals) > 0 {
		avgSignal = compute.Round1(mean(signals))
		entry.Signal.Add(models.SignalSample{Timestamp: now, AvgDBM: avgSignal})
	}

	entry.HealthStatus, entry.Nodes = nodeHealth(f.nodes, total)

	capacity := f.info.CapacityMbps()
	usage := float64(total) * perDeviceUsageMbps

	entry.BandwidthCapacity = capacity
	entry.BandwidthUsage = compute.Round1(usage)
	entry.BandwidthUtilization = compute.Round1(compute.BandwidthUtilization(usage, capacity))
	entry.Uptime24h = compute.UptimePercent(entry.Connected.Points())
	entry.HealthScore = compute.CompositeHealthScore(
		entry.Nodes.Online, entry.Nodes.Total, avgSignal, entry.Uptime24h, entry.BandwidthUtilization)

	ts := now
	entry.LastUpdate = &ts
	entry.LastSuccessfulUpdate = &ts

	return &networkResult{entry: entry, signals: signals}
}

// deviceInfo builds the dashboard record of an active device and returns
// its signal when it may take part in averages.
func deviceInfo(d *telemetry.RawDevice, network *models.MonitoredNetwork) (models.DeviceInfo, float64, bool) {
	info := models.DeviceInfo{
		Name:         d.DisplayName(),
		IP:           d.IPList(),
		MAC:          orDefault(d.MAC, "N/A"),
		Manufacturer: orDefault(d.Manufacturer, "Unknown"),
		OS:           compute.ClassifyDeviceOS(d.Manufacturer, d.Hostname),
		NetworkID:    network.ID,
		NetworkName:  network.DisplayName(),
	}

	if !d.Wireless {
		info.ConnectionType = models.ConnectionWired
		info.Frequency = string(models.BandWired)
		info.FrequencyBand = models.BandWired
		info.SignalDBM = "N/A"
		info.SignalPercent = 100
		info.SignalQuality = models.SignalWired

		return info, 0, false
	}

	var iface telemetry.Interface
	if d.Interface != nil {
		iface = *d.Interface
	}

	info.ConnectionType = models.ConnectionWireless
	info.Frequency, info.FrequencyBand = compute.ParseFrequency(iface.Frequency)

	dbm, ok := compute.ParseSignal(iface.SignalDBM)
	info.SignalQuality = compute.SignalQualityLabel(dbm, ok)
	info.SignalDBM = "N/A"

	if ok {
		info.SignalPercent = compute.SignalToPercent(dbm)
		info.SignalDBM = strconv.FormatFloat(dbm, 'f', -1, 64) + " dBm"
	}

	return info, dbm, ok && compute.ValidSignal(dbm)
}

// nodeHealth derives health from mesh node status: all green is healthy,
// some green is degraded, none is offline. Without node data a network is
// healthy while any device is active.
func nodeHealth(nodes []telemetry.RawNode, activeDevices int) (models.HealthStatus, models.NodeSummary) {
	if len(nodes) == 0 {
		if activeDevices > 0 {
			return models.HealthHealthy, models.NodeSummary{FirmwareConsistent: true}
		}

		return models.HealthOffline, models.NodeSummary{FirmwareConsistent: true}
	}

	summary := models.NodeSummary{Total: len(nodes)}
	versions := make([]string, 0, len(nodes))

	for i := range nodes {
		if nodes[i].IsGreen() {
			summary.Online++
		}

		versions = append(versions, nodes[i].FirmwareVersion())
	}

	summary.FirmwareConsistent = compute.FirmwareConsistent(versions)

	slices.Sort(versions)
	summary.FirmwareVersions = slices.Compact(versions)

	switch {
	case summary.Online == summary.Total:
		return models.HealthHealthy, summary
	case summary.Online > 0:
		return models.HealthDegraded, summary
	default:
		return models.HealthOffline, summary
	}
}

func (e *Engine) recordMetric(ctx context.Context, now time.Time, entry *models.NetworkCache, signals []float64) {
	metric := &models.Metric{
		NetworkID:            entry.NetworkID,
		Timestamp:            now,
		TotalDevices:         entry.TotalDevices,
		WirelessDevices:      entry.WirelessDevices,
		WiredDevices:         entry.WiredDevices,
		BandwidthUsage:       entry.BandwidthUsage,
		BandwidthCapacity:    entry.BandwidthCapacity,
		BandwidthUtilization: entry.BandwidthUtilization,
	}

	if len(signals) > 0 {
		avg := compute.Round1(mean(signals))
		metric.AvgSignalDBM = &avg
	}

	if _, err := e.store.InsertMetric(ctx, metric); err != nil {
		log.Printf("Failed to persist metrics for network %s: %v", entry.NetworkID, err)
		e.networkError(entry.NetworkID, stageMetric)
	}
}

// rebuildCombined recomputes the combined cache from this cycle's network
// results and returns the combined device count. It is the last cache write
// of a cycle.
func (e *Engine) rebuildCombined(now time.Time, activeNetworks int, results []*networkResult) int {
	osCounts := zeroOSCounts()
	bandCounts := zeroBandCounts()

	var (
		devices  []models.DeviceInfo
		signals  []float64
		wireless int
	)

	for _, r := range results {
		devices = append(devices, r.entry.Devices...)
		signals = append(signals, r.signals...)
		wireless += r.entry.WirelessDevices

		for k, v := range r.entry.DeviceOS {
			osCounts[k] += v
		}

		for k, v := range r.entry.Frequency {
			bandCounts[k] += v
		}
	}

	if devices == nil {
		devices = []models.DeviceInfo{}
	}

	ts := now

	e.mu.Lock()
	defer e.mu.Unlock()

	c := &e.cache.Combined
	c.Connected.Add(models.ConnectedSample{Timestamp: now, Count: len(devices), WirelessCount: wireless})

	if len(signals) > 0 {
		c.Signal.Add(models.SignalSample{Timestamp: now, AvgDBM: compute.Round1(mean(signals))})
	}

	c.Devices = devices
	c.DeviceOS = osCounts
	c.Frequency = bandCounts
	c.TotalDevices = len(devices)
	c.WirelessDevices = wireless
	c.WiredDevices = len(devices) - wireless
	c.ActiveNetworks = activeNetworks
	c.LastUpdate = &ts
	c.LastSuccessfulUpdate = &ts

	return len(devices)
}

// touchCombined marks the cache as updated after a failed cycle.
func (e *Engine) touchCombined(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache.Combined.LastUpdate = &now
}

func (e *Engine) networkError(networkID, stage string) {
	e.collect.NetworkErrors.WithLabelValues(networkID, stage).Inc()
}

func zeroOSCounts() map[models.DeviceOS]int {
	m := make(map[models.DeviceOS]int, len(models.AllDeviceOS))
	for _, class := range models.AllDeviceOS {
		m[class] = 0
	}

	return m
}

func zeroBandCounts() map[models.FrequencyBand]int {
	m := make(map[models.FrequencyBand]int, len(models.AllBands))
	for _, b := range models.AllBands {
		m[b] = 0
	}

	return m
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}
