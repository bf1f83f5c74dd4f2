package logger

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// CollectionConfig bounds the error buffer.
type CollectionConfig struct {
	Retention time.Duration // drop entries not seen for this long
	MaxUnique int           // max distinct entries kept
}

// AggregatedLogEntry is one distinct error with its occurrence window.
// Repeats of the same error bump Count instead of adding a new entry.
type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogCollector keeps a bounded, deduplicated buffer of recent error logs so
// the console can show what has been going wrong without scraping stdout.
type LogCollector struct {
	config *CollectionConfig
	logMap map[string]*AggregatedLogEntry
	mutex  sync.RWMutex
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	if config == nil {
		config = &CollectionConfig{}
	}
	if config.Retention <= 0 {
		config.Retention = time.Hour
	}
	if config.MaxUnique <= 0 {
		config.MaxUnique = 200
	}

	c := &LogCollector{
		config: config,
		logMap: make(map[string]*AggregatedLogEntry),
		done:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.evictLoop()
	return c
}

func (d *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := d.entryKey(level, message, fields, caller)

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if entry, exists := d.logMap[key]; exists {
		entry.Count++
		entry.LastSeen = now
		return
	}
	if len(d.logMap) >= d.config.MaxUnique {
		d.evictOldestLocked()
	}
	d.logMap[key] = &AggregatedLogEntry{
		Level:     level,
		Message:   message,
		Fields:    fields,
		Caller:    caller,
		Count:     1,
		FirstSeen: now,
		LastSeen:  now,
	}
}

// Snapshot returns the buffered entries, most recent first.
func (d *LogCollector) Snapshot() []AggregatedLogEntry {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	out := make([]AggregatedLogEntry, 0, len(d.logMap))
	for _, entry := range d.logMap {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out
}

func (d *LogCollector) entryKey(level, message string, fields map[string]interface{}, caller string) string {
	data := struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
		Caller  string                 `json:"caller"`
	}{level, message, fields, caller}

	b, _ := json.Marshal(data)
	hash := sha256.Sum256(b)
	return fmt.Sprintf("%x", hash)
}

func (d *LogCollector) evictLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-d.config.Retention)
			d.mutex.Lock()
			for key, entry := range d.logMap {
				if entry.LastSeen.Before(cutoff) {
					delete(d.logMap, key)
				}
			}
			d.mutex.Unlock()
		case <-d.done:
			return
		}
	}
}

func (d *LogCollector) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range d.logMap {
		if oldestKey == "" || entry.LastSeen.Before(oldest) {
			oldestKey = key
			oldest = entry.LastSeen
		}
	}
	if oldestKey != "" {
		delete(d.logMap, oldestKey)
	}
}

func (d *LogCollector) Close() {
	close(d.done)
	d.wg.Wait()
}
