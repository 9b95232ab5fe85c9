package ports

import (
	"context"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, evt domain.OutboxEvent) error
}

// AdmissionObserver is told the outcome of every seat request on a classroom.
type AdmissionObserver interface {
	ObserveAdmission(outcome string)
}
