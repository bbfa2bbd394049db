// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 The jetiscope authors

package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rcwire/jetiscope/pkg/exbus"
)

var monitorShowAll bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive dashboard for live EX Bus traffic",
	Long: `Full-screen dashboard showing live bus statistics, the latest servo
channel values and the most recent reading per telemetry sensor.

Rejected frames are listed in a scrollable event log with their rejection
reason. With --show-all, valid frames are logged too.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorShowAll, "show-all", false, "Log valid frames as well as rejects")
}

// eventLogEntry is one line in the dashboard's scrollback.
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// sensorReading is the latest decoded value for one sensor id, joined
// with the name and unit learned from text frames.
type sensorReading struct {
	name    string
	unit    string
	value   string
	hasData bool
}

type monitorModel struct {
	connInfo      string
	stats         *exbus.Statistics
	lastChannels  []uint16
	sensors       map[uint8]*sensorReading
	eventLog      []eventLogEntry
	maxLogEntries int
	logView       viewport.Model
	width         int
	height        int
	quitting      bool
	showAll       bool
}

type tickMsg time.Time
type resultMsg exbus.Result
type bytesMsg int
type readErrMsg struct{ err error }

func initialMonitorModel(connInfo string, showAll bool) monitorModel {
	return monitorModel{
		connInfo:      connInfo,
		stats:         exbus.NewStatistics(),
		sensors:       make(map[uint8]*sensorReading),
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 200,
		logView:       viewport.New(80, 10),
		showAll:       showAll,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		monitorTickCmd(),
		tea.EnterAltScreen,
	)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		default:
			var cmd tea.Cmd
			m.logView, cmd = m.logView.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = msg.Width - 4
		logHeight := msg.Height - 16
		if logHeight < 5 {
			logHeight = 5
		}
		m.logView.Height = logHeight

	case tickMsg:
		m.stats.CalculateRates()
		return m, monitorTickCmd()

	case bytesMsg:
		m.stats.AddBytes(int(msg))

	case readErrMsg:
		m.addLogEntry(fmt.Sprintf("READ ERROR: %v", msg.err), true)

	case resultMsg:
		r := exbus.Result(msg)
		m.stats.Update(r)
		m.applyResult(r)
	}

	return m, nil
}

func (m *monitorModel) applyResult(r exbus.Result) {
	switch pkt := r.Packet.(type) {
	case exbus.ChannelData:
		m.lastChannels = pkt.Values
	case exbus.TelemetryText:
		for _, rec := range pkt.Records {
			s := m.sensor(rec.SensorID)
			s.name = rec.Name
			s.unit = rec.Unit
		}
	case exbus.TelemetryData:
		for _, rec := range pkt.Records {
			s := m.sensor(rec.SensorID)
			s.value = exbus.FormatSensorValue(rec)
			s.hasData = true
		}
	}

	if r.Class == exbus.ClassInvalid {
		m.addLogEntry(fmt.Sprintf("%s: %s", r.Short, r.Reason), true)
	} else if m.showAll {
		m.addLogEntry(r.Long, false)
	}
}

func (m *monitorModel) sensor(id uint8) *sensorReading {
	s, ok := m.sensors[id]
	if !ok {
		s = &sensorReading{}
		m.sensors[id] = s
	}
	return s
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("JETISCOPE - EX BUS MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	// Statistics
	var validPercent float64
	if m.stats.FramesTotal > 0 {
		validPercent = float64(m.stats.FramesValid) * 100.0 / float64(m.stats.FramesTotal)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.FramesTotal)),
		labelStyle.Render("Valid:"), valueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.FramesValid, validPercent)),
		labelStyle.Render("Invalid:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.InvalidFrames)),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Bytes:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.BytesTotal)),
		labelStyle.Render("Frame Rate:"), valueStyle.Render(fmt.Sprintf("%.1f frm/s", m.stats.FrameRate)),
		labelStyle.Render("Error Rate:"), func() string {
			if m.stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
			}
			return valueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Latest channel values
	if len(m.lastChannels) > 0 {
		s.WriteString(labelStyle.Render("Channels:"))
		s.WriteString("\n")
		chContent := strings.Builder{}
		for i, v := range m.lastChannels {
			chContent.WriteString(fmt.Sprintf("%s %s",
				labelStyle.Render(fmt.Sprintf("Ch%d:", i+1)),
				valueStyle.Render(fmt.Sprintf("%7.1fus", exbus.ChannelMicroseconds(v))),
			))
			if (i+1)%4 == 0 {
				chContent.WriteString("\n")
			} else {
				chContent.WriteString("   ")
			}
		}
		s.WriteString(boxStyle.Render(strings.TrimRight(chContent.String(), "\n")))
		s.WriteString("\n\n")
	}

	// Latest telemetry reading per sensor
	if len(m.sensors) > 0 {
		s.WriteString(labelStyle.Render("Telemetry:"))
		s.WriteString("\n")

		ids := make([]int, 0, len(m.sensors))
		for id := range m.sensors {
			ids = append(ids, int(id))
		}
		sort.Ints(ids)

		tlmContent := strings.Builder{}
		for _, id := range ids {
			sr := m.sensors[uint8(id)]
			name := sr.name
			if name == "" {
				name = fmt.Sprintf("Sensor %d", id)
			}
			value := sr.value
			if !sr.hasData {
				value = "-"
			}
			if sr.unit != "" {
				value += " " + sr.unit
			}
			tlmContent.WriteString(fmt.Sprintf("%s %s\n",
				labelStyle.Render(name+":"),
				valueStyle.Render(value),
			))
		}
		s.WriteString(boxStyle.Render(strings.TrimRight(tlmContent.String(), "\n")))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logContent := strings.Builder{}
	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for _, entry := range m.eventLog {
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					valueStyle.Render("✓ "+entry.message),
				))
			}
		}
	}
	m.logView.SetContent(logContent.String())
	m.logView.GotoBottom()

	s.WriteString(boxStyle.Width(m.width - 4).Render(m.logView.View()))

	return s.String()
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	m := initialMonitorModel(connInfo, monitorShowAll)
	p := tea.NewProgram(m)

	// Serial reader goroutine
	go func() {
		decoder := exbus.NewDecoder()
		samp := newSampler(baudRate)
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				p.Send(readErrMsg{err: err})
				return
			}

			p.Send(bytesMsg(n))
			for _, s := range samp.stamp(buf[:n]) {
				for _, r := range decoder.Feed(s) {
					p.Send(resultMsg(r))
				}
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	log.Info().Msg("monitor stopped")
	return nil
}
