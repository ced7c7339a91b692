package internal

type LogHandler interface {
	FeatureEvent(feature, id, text string)
	Debug(text string)
	Warn(text string)
	Error(text string, err error)
	RawDataEvent(direction, data string)
	// Dump writes a structured view of v in debug mode only.
	Dump(label string, v any)
}
