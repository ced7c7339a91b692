package internal

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sanity-io/litter"
	"github.com/sirupsen/logrus"
)

type Importance string

const (
	Info    Importance = " "
	Warning Importance = "?"
	Error   Importance = "!"
	Raw     Importance = "-"
)

type Logger struct {
	mu        sync.RWMutex
	database  Database
	location  *time.Location
	debugMode bool
	out       *logrus.Logger
	writer    chan *LogEvent
	done      chan struct{}
}

type LogEvent struct {
	Importance Importance
	Message    *FeatureLogMessage
}

func NewLogger(location *time.Location) *Logger {
	if location == nil {
		location = time.UTC
	}
	out := logrus.New()
	out.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	logger := &Logger{
		location: location,
		out:      out,
		writer:   make(chan *LogEvent, 100),
		done:     make(chan struct{}),
	}
	go logger.startWriter()
	return logger
}

func (l *Logger) startWriter() {
	defer close(l.done)
	for event := range l.writer {
		message := event.Message
		l.logLine(event.Importance, message)

		database := l.getDatabase()
		if database != nil && event.Importance != Raw {
			if err := database.WriteLogMessage(message); err != nil {
				l.out.WithError(err).Error("write log to database failed")
			}
		}
	}
}

// Close drains pending events; the logger must not be used afterwards.
func (l *Logger) Close() {
	close(l.writer)
	<-l.done
}

func (l *Logger) SetOutput(w io.Writer) {
	l.out.SetOutput(w)
}

func (l *Logger) SetDebugMode(debugMode bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugMode = debugMode
	if debugMode {
		l.out.SetLevel(logrus.DebugLevel)
	} else {
		l.out.SetLevel(logrus.InfoLevel)
	}
}

func (l *Logger) isDebug() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.debugMode
}

func (l *Logger) SetDatabase(database Database) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.database = database
}

func (l *Logger) getDatabase() Database {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.database
}

func (l *Logger) FeatureEvent(feature, id, text string) {
	l.logEvent(Info, l.newFeatureLogMessage(feature, id, text))
}

func (l *Logger) logEvent(importance Importance, message *FeatureLogMessage) {
	if message.NodeId == "" {
		message.NodeId = "*"
	}
	message.Importance = string(importance)
	l.writer <- &LogEvent{
		Importance: importance,
		Message:    message,
	}
}

func (l *Logger) Debug(text string) {
	l.logEvent(Info, l.newFeatureLogMessage("info", "", text))
}

func (l *Logger) Warn(text string) {
	l.logEvent(Warning, l.newFeatureLogMessage("warning", "", text))
}

func (l *Logger) Error(text string, err error) {
	l.logEvent(Error, l.newFeatureLogMessage("error", "", fmt.Sprintf("%s: %s", text, err)))
}

func (l *Logger) RawDataEvent(direction, data string) {
	if l.isDebug() {
		l.logEvent(Raw, l.newFeatureLogMessage("raw", "", fmt.Sprintf("%s: %s", direction, data)))
	}
}

func (l *Logger) Dump(label string, v any) {
	if l.isDebug() {
		l.out.WithField("dump", label).Debug(litter.Sdump(v))
	}
}

func (l *Logger) logLine(importance Importance, message *FeatureLogMessage) {
	entry := l.out.WithFields(logrus.Fields{
		"id":      message.NodeId,
		"feature": message.Feature,
	})
	switch importance {
	case Error:
		entry.Error(message.Text)
	case Warning:
		entry.Warn(message.Text)
	case Raw:
		entry.Debug(message.Text)
	default:
		entry.Info(message.Text)
	}
}

func (l *Logger) newFeatureLogMessage(feature, id, text string) *FeatureLogMessage {
	now := time.Now()
	return &FeatureLogMessage{
		Time:      now.In(l.location).Format("2006-01-02 15:04:05"),
		TimeStamp: now.UTC(),
		Text:      text,
		Feature:   feature,
		NodeId:    id,
	}
}
