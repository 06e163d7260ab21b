package models

import "time"

// Device identifies this node in logs, uploads and the status API
type Device struct {
	DeviceID         string    `json:"device_id"`
	Name             string    `json:"name"`
	FirmwareVersion  string    `json:"firmware_version"`
	HardwareRevision string    `json:"hardware_revision"`
	BootedAt         time.Time `json:"booted_at"`
}

// Status is the read-only view of the node published after every loop step
type Status struct {
	Device       Device     `json:"device"`
	Readings     Aggregate  `json:"readings"`
	Alert        string     `json:"alert"`
	LinkUp       bool       `json:"link_up"`
	Transport    string     `json:"transport"`
	Samples      uint64     `json:"samples"`
	Rejected     uint64     `json:"rejected"`
	Uploads      uint64     `json:"uploads"`
	UploadErrors uint64     `json:"upload_errors"`
	LastUpload   *time.Time `json:"last_upload,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
