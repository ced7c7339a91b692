package internal

import "time"

const FeatureLogMessageType = "featureLogMessage"

type FeatureLogMessage struct {
	Time            string    `json:"time" bson:"time"`
	TimeStamp       time.Time `json:"timestamp" bson:"timestamp"`
	Feature         string    `json:"feature" bson:"feature"`
	NodeId          string    `json:"id" bson:"node_id"`
	EventTrackingId string    `json:"event_tracking_id,omitempty" bson:"event_tracking_id,omitempty"`
	Text            string    `json:"text" bson:"text"`
	Importance      string    `json:"importance" bson:"importance"`
}

func (fm *FeatureLogMessage) DataType() string {
	return FeatureLogMessageType
}
