package types

const SubProtocol16 = "ocpp1.6"

// parseEnum matches s against the closed set of values of an enumeration.
func parseEnum[E ~string](s string, values ...E) (E, bool) {
	for _, v := range values {
		if string(v) == s {
			return v, true
		}
	}
	var zero E
	return zero, false
}

type AuthorizationStatus string

const (
	AuthorizationStatusAccepted     AuthorizationStatus = "Accepted"
	AuthorizationStatusBlocked      AuthorizationStatus = "Blocked"
	AuthorizationStatusExpired      AuthorizationStatus = "Expired"
	AuthorizationStatusInvalid      AuthorizationStatus = "Invalid"
	AuthorizationStatusConcurrentTx AuthorizationStatus = "ConcurrentTx"
)

func ParseAuthorizationStatus(s string) (AuthorizationStatus, bool) {
	return parseEnum(s,
		AuthorizationStatusAccepted,
		AuthorizationStatusBlocked,
		AuthorizationStatusExpired,
		AuthorizationStatusInvalid,
		AuthorizationStatusConcurrentTx)
}

type IdTagInfo struct {
	ExpiryDate  *DateTime
	ParentIdTag string
	Status      AuthorizationStatus
}

func NewIdTagInfo(status AuthorizationStatus) *IdTagInfo {
	return &IdTagInfo{Status: status}
}

type RegistrationStatus string

const (
	RegistrationStatusAccepted RegistrationStatus = "Accepted"
	RegistrationStatusPending  RegistrationStatus = "Pending"
	RegistrationStatusRejected RegistrationStatus = "Rejected"
)

func ParseRegistrationStatus(s string) (RegistrationStatus, bool) {
	return parseEnum(s, RegistrationStatusAccepted, RegistrationStatusPending, RegistrationStatusRejected)
}

type ResetType string

const (
	ResetTypeHard ResetType = "Hard"
	ResetTypeSoft ResetType = "Soft"
)

func ParseResetType(s string) (ResetType, bool) {
	return parseEnum(s, ResetTypeHard, ResetTypeSoft)
}

type ResetStatus string

const (
	ResetStatusAccepted ResetStatus = "Accepted"
	ResetStatusRejected ResetStatus = "Rejected"
)

func ParseResetStatus(s string) (ResetStatus, bool) {
	return parseEnum(s, ResetStatusAccepted, ResetStatusRejected)
}

type ConfigurationStatus string

const (
	ConfigurationStatusAccepted       ConfigurationStatus = "Accepted"
	ConfigurationStatusRejected       ConfigurationStatus = "Rejected"
	ConfigurationStatusRebootRequired ConfigurationStatus = "RebootRequired"
	ConfigurationStatusNotSupported   ConfigurationStatus = "NotSupported"
)

func ParseConfigurationStatus(s string) (ConfigurationStatus, bool) {
	return parseEnum(s,
		ConfigurationStatusAccepted,
		ConfigurationStatusRejected,
		ConfigurationStatusRebootRequired,
		ConfigurationStatusNotSupported)
}

type DataTransferStatus string

const (
	DataTransferStatusAccepted         DataTransferStatus = "Accepted"
	DataTransferStatusRejected         DataTransferStatus = "Rejected"
	DataTransferStatusUnknownMessageId DataTransferStatus = "UnknownMessageId"
	DataTransferStatusUnknownVendorId  DataTransferStatus = "UnknownVendorId"
)

func ParseDataTransferStatus(s string) (DataTransferStatus, bool) {
	return parseEnum(s,
		DataTransferStatusAccepted,
		DataTransferStatusRejected,
		DataTransferStatusUnknownMessageId,
		DataTransferStatusUnknownVendorId)
}

type UpdateType string
type UpdateStatus string

const (
	UpdateTypeDifferential      UpdateType   = "Differential"
	UpdateTypeFull              UpdateType   = "Full"
	UpdateStatusAccepted        UpdateStatus = "Accepted"
	UpdateStatusFailed          UpdateStatus = "Failed"
	UpdateStatusNotSupported    UpdateStatus = "NotSupported"
	UpdateStatusVersionMismatch UpdateStatus = "VersionMismatch"
)

func ParseUpdateType(s string) (UpdateType, bool) {
	return parseEnum(s, UpdateTypeDifferential, UpdateTypeFull)
}

func ParseUpdateStatus(s string) (UpdateStatus, bool) {
	return parseEnum(s, UpdateStatusAccepted, UpdateStatusFailed, UpdateStatusNotSupported, UpdateStatusVersionMismatch)
}

type MessageTrigger string

const (
	MessageTriggerBootNotification              MessageTrigger = "BootNotification"
	MessageTriggerDiagnosticsStatusNotification MessageTrigger = "DiagnosticsStatusNotification"
	MessageTriggerFirmwareStatusNotification    MessageTrigger = "FirmwareStatusNotification"
	MessageTriggerHeartbeat                     MessageTrigger = "Heartbeat"
	MessageTriggerMeterValues                   MessageTrigger = "MeterValues"
	MessageTriggerStatusNotification            MessageTrigger = "StatusNotification"
)

func ParseMessageTrigger(s string) (MessageTrigger, bool) {
	return parseEnum(s,
		MessageTriggerBootNotification,
		MessageTriggerDiagnosticsStatusNotification,
		MessageTriggerFirmwareStatusNotification,
		MessageTriggerHeartbeat,
		MessageTriggerMeterValues,
		MessageTriggerStatusNotification)
}

type TriggerMessageStatus string

const (
	TriggerMessageStatusAccepted       TriggerMessageStatus = "Accepted"
	TriggerMessageStatusRejected       TriggerMessageStatus = "Rejected"
	TriggerMessageStatusNotImplemented TriggerMessageStatus = "NotImplemented"
)

func ParseTriggerMessageStatus(s string) (TriggerMessageStatus, bool) {
	return parseEnum(s, TriggerMessageStatusAccepted, TriggerMessageStatusRejected, TriggerMessageStatusNotImplemented)
}
