package services

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-crud/modules/members/domain/aggregates/member"
	"github.com/iota-uz/iota-crud/pkg/composables"
	"github.com/iota-uz/iota-crud/pkg/eventbus"
)

// SubscribeAuditLog logs every member change with the request logger.
func SubscribeAuditLog(publisher eventbus.EventBus) {
	publisher.Subscribe(onCreated)
	publisher.Subscribe(onUpdated)
	publisher.Subscribe(onDeleted)
}

func onCreated(ctx context.Context, e *member.CreatedEvent) {
	composables.UseLogger(ctx).WithFields(logrus.Fields{
		"member-id": e.Result.ID(),
		"login":     e.Result.Login(),
	}).Info("member created")
}

func onUpdated(ctx context.Context, e *member.UpdatedEvent) {
	logger := composables.UseLogger(ctx).WithField("member-id", e.Result.ID())
	patch, err := Diff(e.Data, e.Result)
	if err != nil {
		logger.WithError(err).Warn("failed to diff member update")
		return
	}
	if len(patch) == 0 {
		return
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		logger.WithError(err).Warn("failed to encode member diff")
		return
	}
	logger.WithField("diff", string(raw)).Info("member updated")
}

func onDeleted(ctx context.Context, e *member.DeletedEvent) {
	composables.UseLogger(ctx).WithField("member-id", e.ID).Info("member deleted")
}
