package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/vgs-kv/loadbench/internal/metrics"
)

// TestConfig holds run parameters for display.
type TestConfig struct {
	TargetURL   string        // Target base URL
	Concurrency int           // Number of concurrent workers
	Duration    time.Duration // Run duration
	Rate        int           // Aggregate request rate cap (0 = unlimited)
	Timeout     time.Duration // Per-attempt timeout
	Retries     int           // Retries after the first attempt
	Arrival     string        // Arrival model when a rate cap is set
	ConfigFile  string        // Path to config file if used
}

// Dashboard renders a live terminal UI for run metrics.
type Dashboard struct {
	collector    *metrics.Collector
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	// Widgets
	grid           *ui.Grid
	latencySparkle *widgets.SparklineGroup
	latencyPara    *widgets.Paragraph
	rpsGauge       *widgets.Gauge
	reasonList     *widgets.List
	opList         *widgets.List
	summaryPara    *widgets.Paragraph
	metricsPara    *widgets.Paragraph
	latencyHistory []float64
	startTime      time.Time
	targetURL      string
	testConfig     TestConfig
}

// New creates a new Dashboard.
func New(collector *metrics.Collector, cfg TestConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		collector:      collector,
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		startTime:      time.Now(),
		targetURL:      cfg.TargetURL,
		testConfig:     cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

// initWidgets initializes all dashboard widgets.
func (d *Dashboard) initWidgets() {
	// Latency Sparkline
	sparkline := widgets.NewSparkline()
	sparkline.Title = "Latency (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Real-time Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	// Latency Metrics Paragraph
	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency Stats"
	d.latencyPara.Text = "Min: 0ms\nMean: 0ms\nP50: 0ms\nP95: 0ms\nP99: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	// RPS Gauge
	d.rpsGauge = widgets.NewGauge()
	d.rpsGauge.Title = "Requests Per Second"
	d.rpsGauge.Percent = 0
	d.rpsGauge.BarColor = ui.ColorBlue
	d.rpsGauge.BorderStyle.Fg = ui.ColorCyan
	d.rpsGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	// Failure Reason List
	d.reasonList = widgets.NewList()
	d.reasonList.Title = "Failure Reasons"
	d.reasonList.Rows = []string{"No failures"}
	d.reasonList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.reasonList.BorderStyle.Fg = ui.ColorCyan

	// Operation List
	d.opList = widgets.NewList()
	d.opList.Title = "Operations"
	d.opList.Rows = []string{"Awaiting data"}
	d.opList.TextStyle = ui.NewStyle(ui.ColorCyan)
	d.opList.BorderStyle.Fg = ui.ColorCyan

	// Summary Paragraph
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Run Summary"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	// Metrics Paragraph (plain text summary)
	d.metricsPara = widgets.NewParagraph()
	d.metricsPara.Title = "Metrics"
	d.metricsPara.Text = "Waiting for data..."
	d.metricsPara.BorderStyle.Fg = ui.ColorCyan
}

// setupGrid configures the layout grid.
func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.16,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.20,
			ui.NewCol(0.5, d.rpsGauge),
			ui.NewCol(0.5, d.metricsPara),
		),
		ui.NewRow(0.28,
			ui.NewCol(0.65, d.latencySparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
		ui.NewRow(0.36,
			ui.NewCol(0.5, d.opList),
			ui.NewCol(0.5, d.reasonList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and cleans up.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// run is the main dashboard update loop.
func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			// Drain any remaining events
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			// Check if context is done to avoid blocking
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Do not return here; wait for Stop() to cancel context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the collector.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := time.Since(d.startTime)
	stats := d.collector.Stats(elapsed)

	// Update latency history for sparkline
	if stats.MeanLatency > 0 {
		latencyMs := millis(stats.MeanLatency)
		d.latencyHistory = append(d.latencyHistory, latencyMs)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		// Update sparkline title with current latency values
		d.latencySparkle.Title = fmt.Sprintf(
			"Real-time Latency | Current: %.2fms | Min: %.2fms | Max: %.2fms",
			latencyMs,
			millis(stats.MinLatency),
			millis(stats.MaxLatency),
		)
	}

	currentRPS := stats.RequestsPerSec
	maxRPS := 100.0
	if currentRPS > maxRPS {
		maxRPS = currentRPS
	}
	rpsPercent := int((currentRPS / maxRPS) * 100)
	if rpsPercent > 100 {
		rpsPercent = 100
	}
	d.rpsGauge.Percent = rpsPercent
	d.rpsGauge.Label = fmt.Sprintf("%.1f RPS", currentRPS)

	successRate := stats.SuccessRate * 100

	// Build run parameters line
	params := d.formatTestParams()

	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s\n%s\nElapsed: %s | Total: %d | Success Rate: %.1f%%",
		d.targetURL,
		params,
		elapsed.Round(time.Second),
		stats.Total,
		successRate,
	)

	d.metricsPara.Text = fmt.Sprintf(
		"Total Operations:  %d\nSuccessful:        %d\nSoft Failures:     %d\nHard Failures:     %d\nCurrent RPS:       %.2f\nSuccess Rate:      %.1f%%\nP50/P95/P99:       %.2f / %.2f / %.2f ms",
		stats.Total,
		stats.Successes,
		stats.SoftFailures,
		stats.HardFailures,
		currentRPS,
		successRate,
		millis(stats.P50Latency),
		millis(stats.P95Latency),
		millis(stats.P99Latency),
	)

	d.latencyPara.Text = fmt.Sprintf(
		"Min:  %.2fms\nMean: %.2fms\nP50:  %.2fms\nP95:  %.2fms\nP99:  %.2fms",
		millis(stats.MinLatency),
		millis(stats.MeanLatency),
		millis(stats.P50Latency),
		millis(stats.P95Latency),
		millis(stats.P99Latency),
	)

	d.reasonList.Rows = formatReasonRows(stats.Reasons)

	d.updateOpList(stats)
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func (d *Dashboard) updateOpList(stats metrics.Stats) {
	if len(stats.Ops) == 0 {
		d.opList.Rows = []string{"[No operation data](fg:green)"}
		return
	}
	type opRow struct {
		name  string
		count metrics.OpCount
	}
	rows := make([]opRow, 0, len(stats.Ops))
	for name, count := range stats.Ops {
		rows = append(rows, opRow{name: name, count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count.Total() == rows[j].count.Total() {
			return rows[i].name < rows[j].name
		}
		return rows[i].count.Total() > rows[j].count.Total()
	})
	formatted := make([]string, 0, len(rows))
	for _, entry := range rows {
		share := 0.0
		if stats.Total > 0 {
			share = (float64(entry.count.Total()) / float64(stats.Total)) * 100
		}
		formatted = append(formatted, fmt.Sprintf("[%s](fg:cyan) | %5.1f%% | OK %d | Soft %d | Hard %d",
			entry.name,
			share,
			entry.count.Successes,
			entry.count.SoftFailures,
			entry.count.HardFailures,
		))
	}
	d.opList.Rows = formatted
}

func formatReasonRows(reasons []metrics.ReasonCount) []string {
	if len(reasons) == 0 {
		return []string{"[No failures](fg:green)"}
	}
	maxRows := len(reasons)
	if maxRows > 10 {
		maxRows = 10
	}
	formatted := make([]string, 0, maxRows)
	for i := 0; i < maxRows; i++ {
		row := reasons[i]
		formatted = append(formatted, fmt.Sprintf("[%s](fg:red) %d", row.Reason, row.Count))
	}
	return formatted
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// formatTestParams formats the run configuration parameters for display.
func (d *Dashboard) formatTestParams() string {
	var parts []string

	// Concurrency
	if d.testConfig.Concurrency > 0 {
		parts = append(parts, fmt.Sprintf("Workers: %d", d.testConfig.Concurrency))
	}

	// Rate
	if d.testConfig.Rate > 0 {
		parts = append(parts, fmt.Sprintf("Rate: %d/s", d.testConfig.Rate))
	} else {
		parts = append(parts, "Rate: unlimited")
	}

	// Arrival model (only interesting alongside a rate cap)
	if d.testConfig.Rate > 0 && d.testConfig.Arrival != "" && d.testConfig.Arrival != "uniform" {
		parts = append(parts, fmt.Sprintf("Arrival: %s", d.testConfig.Arrival))
	}

	// Duration
	if d.testConfig.Duration > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %s", d.testConfig.Duration))
	}

	// Timeout
	if d.testConfig.Timeout > 0 {
		parts = append(parts, fmt.Sprintf("Timeout: %s", d.testConfig.Timeout))
	}

	// Retries (only show if set)
	if d.testConfig.Retries > 0 {
		parts = append(parts, fmt.Sprintf("Retries: %d", d.testConfig.Retries))
	}

	// Config file (only show if used)
	if d.testConfig.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", d.testConfig.ConfigFile))
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, " | ")
}
