package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Torchwoods/znp-host-framework/pkg/log"
	"github.com/Torchwoods/znp-host-framework/pkg/mt"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Commands          map[string]*CommandStats
	Sessions          map[string]*SessionStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// CommandStats holds per-command counters.
type CommandStats struct {
	Requests    int
	Responses   int
	Indications int
	Failures    int
	TotalRTT    time.Duration
	MaxRTT      time.Duration
}

// SessionStats holds statistics for a single link session.
type SessionStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	Port       string
	LastDevice string
}

// Collect reads every event of the log file into Stats.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Commands:          make(map[string]*CommandStats),
		Sessions:          make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
	return stats, nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	sess, ok := s.Sessions[event.SessionID]
	if !ok {
		sess = &SessionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Sessions[event.SessionID] = sess
	}
	sess.Events++
	if event.Timestamp.After(sess.LastSeen) {
		sess.LastSeen = event.Timestamp
	}
	if event.Port != "" && sess.Port == "" {
		sess.Port = event.Port
	}
	if sc := event.StateChange; sc != nil && sc.Entity == log.StateEntityDevice {
		sess.LastDevice = sc.NewState
	}

	if c := event.Command; c != nil {
		name := c.Name
		if name == "" {
			name = mt.Command{Type: mt.Type(c.Type), Subsystem: mt.Subsystem(c.Subsystem), ID: c.ID}.String()
		}
		cs, ok := s.Commands[name]
		if !ok {
			cs = &CommandStats{}
			s.Commands[name] = cs
		}
		switch mt.Type(c.Type) {
		case mt.TypeSREQ:
			cs.Requests++
		case mt.TypeAREQ:
			if event.Direction == log.DirectionOut {
				cs.Requests++
			} else {
				cs.Indications++
			}
		case mt.TypeSRSP:
			cs.Responses++
			if c.Status != nil && !mt.Status(*c.Status).OK() {
				cs.Failures++
			}
		}
		if c.RoundTrip != nil {
			cs.TotalRTT += *c.RoundTrip
			if *c.RoundTrip > cs.MaxRTT {
				cs.MaxRTT = *c.RoundTrip
			}
		}
	}

	if event.Error != nil {
		s.Errors++
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== ZNP Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerMT, log.LayerHost} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Commands) > 0 {
		fmt.Fprintln(w, "Commands:")
		names := make([]string, 0, len(stats.Commands))
		for n := range stats.Commands {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			cs := stats.Commands[n]
			fmt.Fprintf(w, "  %-28s req=%d rsp=%d ind=%d fail=%d", n, cs.Requests, cs.Responses, cs.Indications, cs.Failures)
			if cs.Responses > 0 && cs.TotalRTT > 0 {
				fmt.Fprintf(w, " avg=%s max=%s",
					formatDuration(cs.TotalRTT/time.Duration(cs.Responses)), formatDuration(cs.MaxRTT))
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenSessionID(s.id), s.stats.Events, duration)
			if s.stats.Port != "" {
				fmt.Fprintf(w, "           Port: %s\n", s.stats.Port)
			}
			if s.stats.LastDevice != "" {
				fmt.Fprintf(w, "           Device state: %s\n", s.stats.LastDevice)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
