// Package logging provides categorized file-based logging for bonuskar.
// Each category writes to its own date-stamped file under the configured
// directory. When logging is disabled every call is a no-op, so callers
// never guard their log statements.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config, wiring
	CategoryStore   Category = "store"   // History store operations
	CategoryScraper Category = "scraper" // Bonus page scraping
	CategoryBucket  Category = "bucket"  // LLM bucket generation
	CategoryCart    Category = "cart"    // Cart automation
	CategoryBrowser Category = "browser" // Browser lifecycle
)

// Log levels, lowest to highest.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Options controls where and how much is logged.
type Options struct {
	Dir     string // directory for log files
	Level   string // debug, info, warn, error
	Enabled bool
}

// Logger wraps a standard logger bound to one category file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	mu      sync.Mutex
	loggers = make(map[Category]*Logger)
	opts    Options

	// logLevel is read on every log call, possibly from goroutines that
	// outlive Initialize, so it is atomic rather than guarded by mu.
	logLevel atomic.Int32
)

func init() { logLevel.Store(LevelInfo) }

// Initialize configures the logging directory and level. Must be called
// before Get; until then every logger is a no-op.
func Initialize(o Options) error {
	mu.Lock()
	defer mu.Unlock()

	opts = o
	switch o.Level {
	case "debug":
		logLevel.Store(LevelDebug)
	case "info", "":
		logLevel.Store(LevelInfo)
	case "warn", "warning":
		logLevel.Store(LevelWarn)
	case "error":
		logLevel.Store(LevelError)
	default:
		logLevel.Store(LevelInfo)
	}

	if !o.Enabled {
		return nil
	}
	if o.Dir == "" {
		return fmt.Errorf("log directory required")
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// Get returns (or creates) the logger for a category. Returns a no-op
// logger when logging is disabled or the file cannot be opened.
func Get(category Category) *Logger {
	mu.Lock()
	defer mu.Unlock()

	if !opts.Enabled || opts.Dir == "" {
		return &Logger{category: category}
	}
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open %s: %v\n", path, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// CloseAll closes all open log files. Call at shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel.Load() > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel.Load() > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel.Load() > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// Convenience functions per category. No-ops when logging is disabled.

func Boot(format string, args ...interface{})         { Get(CategoryBoot).Info(format, args...) }
func BootWarn(format string, args ...interface{})     { Get(CategoryBoot).Warn(format, args...) }
func Store(format string, args ...interface{})        { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{})   { Get(CategoryStore).Debug(format, args...) }
func StoreWarn(format string, args ...interface{})    { Get(CategoryStore).Warn(format, args...) }
func StoreError(format string, args ...interface{})   { Get(CategoryStore).Error(format, args...) }
func Scraper(format string, args ...interface{})      { Get(CategoryScraper).Info(format, args...) }
func ScraperDebug(format string, args ...interface{}) { Get(CategoryScraper).Debug(format, args...) }
func ScraperWarn(format string, args ...interface{})  { Get(CategoryScraper).Warn(format, args...) }
func Bucket(format string, args ...interface{})       { Get(CategoryBucket).Info(format, args...) }
func BucketWarn(format string, args ...interface{})   { Get(CategoryBucket).Warn(format, args...) }
func BucketError(format string, args ...interface{})  { Get(CategoryBucket).Error(format, args...) }
func Cart(format string, args ...interface{})         { Get(CategoryCart).Info(format, args...) }
func CartWarn(format string, args ...interface{})     { Get(CategoryCart).Warn(format, args...) }
func Browser(format string, args ...interface{})      { Get(CategoryBrowser).Info(format, args...) }
func BrowserWarn(format string, args ...interface{})  { Get(CategoryBrowser).Warn(format, args...) }
