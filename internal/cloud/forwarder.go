package cloud

import (
	"time"

	"wisefido-vitals/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Forwarder pushes newly persisted medical records to an external webhook.
// Delivery is best effort: failures are logged and never surfaced to the
// API caller, and Forward is meant to be called from its own goroutine.
type Forwarder struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

func NewForwarder(url string, timeout time.Duration, logger *zap.Logger) *Forwarder {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Forwarder{
		httpClient: client,
		url:        url,
		logger:     logger,
	}
}

// PublishRecord satisfies the record sink interface used by the record
// service: delivery happens off the caller's goroutine.
func (f *Forwarder) PublishRecord(record domain.MedicalRecord) {
	go f.Forward(record)
}

// Forward POSTs one record to the webhook.
func (f *Forwarder) Forward(record domain.MedicalRecord) {
	resp, err := f.httpClient.R().
		SetBody(record).
		Post(f.url)
	if err != nil {
		f.logger.Warn("failed to forward record to cloud",
			zap.String("record_id", record.RecordID),
			zap.Error(err),
		)
		return
	}
	if resp.IsError() {
		f.logger.Warn("cloud webhook rejected record",
			zap.String("record_id", record.RecordID),
			zap.Int("status", resp.StatusCode()),
		)
		return
	}
	f.logger.Debug("record forwarded to cloud",
		zap.String("record_id", record.RecordID),
		zap.Int("status", resp.StatusCode()),
	)
}
