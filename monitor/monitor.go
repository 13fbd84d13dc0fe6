// Package monitor follows a growing log file and relays its new lines.
package monitor

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nxadm/tail"
)

// Monitor watches a file for new lines
type Monitor struct {
	filePath string
	tail     *tail.Tail
	done     chan struct{}
	relaying bool
	prefix   string
	// offset is the end of the last line the relay consumed. It is owned by
	// the relay goroutine until done is closed.
	offset int64
}

// NewMonitor starts following filePath at byte offset from, or at its end
// when from is negative. The file does not have to exist yet.
func NewMonitor(filePath string, from int64) (*Monitor, error) {
	location := &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	start := from
	if from >= 0 {
		location = &tail.SeekInfo{Offset: from, Whence: io.SeekStart}
	} else {
		start = 0
		if info, err := os.Stat(filePath); err == nil {
			start = info.Size()
		}
	}
	t, err := tail.TailFile(filePath, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      true,
		Location:  location,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to tail file: %w", err)
	}

	return &Monitor{
		filePath: filePath,
		tail:     t,
		done:     make(chan struct{}),
		offset:   start,
	}, nil
}

// Relay logs every new line with prefix until the monitor is stopped. It
// returns immediately; Stop waits for the relay to finish.
func (m *Monitor) Relay(prefix string) {
	m.relaying = true
	m.prefix = prefix
	go func() {
		defer close(m.done)
		for line := range m.tail.Lines {
			if line.Err != nil {
				log.Printf("%s read error: %v", prefix, line.Err)
				continue
			}
			m.offset += int64(len(line.Text)) + 1
			m.emit(line.Text)
		}
	}()
}

func (m *Monitor) emit(text string) {
	if text == "" {
		return
	}
	log.Printf("%s %s", m.prefix, text)
}

// Drain stops following and relays whatever the writer left after the last
// relayed line. Call it once the writer has exited so its final lines are
// not lost between two polls.
func (m *Monitor) Drain() {
	m.Stop()
	if !m.relaying {
		return
	}

	f, err := os.Open(m.filePath)
	if err != nil {
		log.Printf("%s drain: %v", m.prefix, err)
		return
	}
	defer f.Close()

	if _, err := f.Seek(m.offset, io.SeekStart); err != nil {
		log.Printf("%s drain: %v", m.prefix, err)
		return
	}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m.offset += int64(len(scanner.Bytes())) + 1
		m.emit(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Printf("%s drain: %v", m.prefix, err)
	}
}

// Stop stops the monitor and waits for the relay to finish.
func (m *Monitor) Stop() {
	if err := m.tail.Stop(); err != nil {
		log.Printf("[monitor] %s: %v", m.filePath, err)
	}
	m.tail.Cleanup()
	if m.relaying {
		<-m.done
	}
}
