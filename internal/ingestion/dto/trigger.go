package dto

import "encoding/json"

// TriggerResponse is returned by the external-process trigger.
type TriggerResponse struct {
	Message            string          `json:"message,omitempty"`
	Error              string          `json:"error,omitempty"`
	ErrorKind          string          `json:"errorKind,omitempty"`
	Details            interface{}     `json:"details,omitempty"`
	RecordsScraped     int             `json:"recordsScraped"`
	Sample             []ScrapedRow    `json:"sample,omitempty"`
	ProcessStderr      string          `json:"processStderr,omitempty"`
	StorageAPIResponse json.RawMessage `json:"storageApiResponse,omitempty" swaggertype:"object"`
}
