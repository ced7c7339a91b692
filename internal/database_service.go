package internal

import "context"

type Database interface {
	WriteLogMessage(data Data) error
	ReadLog(ctx context.Context, nodeId string, limit int64) ([]FeatureLogMessage, error)
}

type Data interface {
	DataType() string
}
