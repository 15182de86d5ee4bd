package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pingwards-backend/application/ports"
	pkgerrors "pingwards-backend/pkg/errors"
)

const targetID = "notify"

// Scheduler implements ports.NotificationScheduler on EventBridge:
// one one-shot cron rule per pending notification, named
// <prefix><uuid>, targeting the configured delivery function. The
// rule name is the notification id. The delivery function deletes its
// rule after firing.
type Scheduler struct {
	client       *eventbridge.Client
	eventBusName string
	rulePrefix   string
	targetArn    string
	logger       *zap.Logger

	granted atomic.Bool
}

// NewScheduler creates an EventBridge-backed scheduler
func NewScheduler(client *eventbridge.Client, eventBusName, rulePrefix, targetArn string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		client:       client,
		eventBusName: eventBusName,
		rulePrefix:   rulePrefix,
		targetArn:    targetArn,
		logger:       logger,
	}
}

// notificationPayload is the input handed to the delivery target
type notificationPayload struct {
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	FireAt time.Time `json:"fireAt"`
}

// Schedule registers a one-shot rule firing at fireAt. Past instants
// and a missing permission grant both yield "" without touching the
// platform.
func (s *Scheduler) Schedule(ctx context.Context, fireAt time.Time, body string) (string, error) {
	if !s.granted.Load() {
		return "", nil
	}
	if !fireAt.After(time.Now()) {
		return "", nil
	}

	ruleName := s.rulePrefix + uuid.New().String()

	_, err := s.client.PutRule(ctx, &eventbridge.PutRuleInput{
		Name:               aws.String(ruleName),
		ScheduleExpression: aws.String(oneShotCron(fireAt)),
		State:              types.RuleStateEnabled,
		Description:        aws.String("pingwards one-shot notification"),
	})
	if err != nil {
		return "", pkgerrors.NewSchedulingError("put_rule", err)
	}

	payload, err := json.Marshal(notificationPayload{
		Title:  ports.NotificationTitle,
		Body:   body,
		FireAt: fireAt.UTC(),
	})
	if err != nil {
		return "", pkgerrors.NewSchedulingError("marshal_payload", err)
	}

	_, err = s.client.PutTargets(ctx, &eventbridge.PutTargetsInput{
		Rule: aws.String(ruleName),
		Targets: []types.Target{{
			Id:    aws.String(targetID),
			Arn:   aws.String(s.targetArn),
			Input: aws.String(string(payload)),
		}},
	})
	if err != nil {
		// orphan rule without a target is useless, clean it up
		if _, delErr := s.client.DeleteRule(ctx, &eventbridge.DeleteRuleInput{Name: aws.String(ruleName)}); delErr != nil {
			s.logger.Warn("failed to clean up targetless rule",
				zap.String("rule", ruleName),
				zap.Error(delErr),
			)
		}
		return "", pkgerrors.NewSchedulingError("put_targets", err)
	}

	s.logger.Debug("notification scheduled",
		zap.String("notificationID", ruleName),
		zap.Time("fireAt", fireAt),
	)
	return ruleName, nil
}

// Cancel removes the rule and its target. Empty and unknown ids are
// no-ops.
func (s *Scheduler) Cancel(ctx context.Context, notificationID string) error {
	if notificationID == "" {
		return nil
	}
	return s.deleteRule(ctx, notificationID)
}

// CancelAll deletes every rule under the configured prefix
func (s *Scheduler) CancelAll(ctx context.Context) error {
	names, err := s.listRuleNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.deleteRule(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// ListPending returns every scheduled notification still registered
func (s *Scheduler) ListPending(ctx context.Context) ([]ports.PendingNotification, error) {
	var pending []ports.PendingNotification

	input := &eventbridge.ListRulesInput{NamePrefix: aws.String(s.rulePrefix)}
	for {
		page, err := s.client.ListRules(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewSchedulingError("list_rules", err)
		}

		for _, rule := range page.Rules {
			fireAt, err := parseOneShotCron(aws.ToString(rule.ScheduleExpression))
			if err != nil {
				s.logger.Warn("skipping rule with unparseable schedule",
					zap.String("rule", aws.ToString(rule.Name)),
					zap.Error(err),
				)
				continue
			}

			body := ""
			targets, err := s.client.ListTargetsByRule(ctx, &eventbridge.ListTargetsByRuleInput{
				Rule: rule.Name,
			})
			if err == nil && len(targets.Targets) > 0 {
				var payload notificationPayload
				if jsonErr := json.Unmarshal([]byte(aws.ToString(targets.Targets[0].Input)), &payload); jsonErr == nil {
					body = payload.Body
				}
			}

			pending = append(pending, ports.PendingNotification{
				ID:     aws.ToString(rule.Name),
				FireAt: fireAt,
				Body:   body,
			})
		}

		if page.NextToken == nil {
			break
		}
		input.NextToken = page.NextToken
	}

	return pending, nil
}

// RequestPermission probes the event bus. A successful probe is
// remembered; Schedule stays a no-op until then.
func (s *Scheduler) RequestPermission(ctx context.Context) (bool, error) {
	_, err := s.client.DescribeEventBus(ctx, &eventbridge.DescribeEventBusInput{
		Name: aws.String(s.eventBusName),
	})
	if err != nil {
		s.logger.Warn("event bus probe failed, scheduling disabled", zap.Error(err))
		return false, pkgerrors.NewSchedulingError("describe_event_bus", err)
	}

	s.granted.Store(true)
	return true, nil
}

func (s *Scheduler) deleteRule(ctx context.Context, ruleName string) error {
	_, err := s.client.RemoveTargets(ctx, &eventbridge.RemoveTargetsInput{
		Rule:  aws.String(ruleName),
		Ids:   []string{targetID},
		Force: true,
	})
	if err != nil && !isNotFound(err) {
		return pkgerrors.NewSchedulingError("remove_targets", err)
	}

	_, err = s.client.DeleteRule(ctx, &eventbridge.DeleteRuleInput{
		Name:  aws.String(ruleName),
		Force: true,
	})
	if err != nil && !isNotFound(err) {
		return pkgerrors.NewSchedulingError("delete_rule", err)
	}

	return nil
}

func (s *Scheduler) listRuleNames(ctx context.Context) ([]string, error) {
	var names []string
	input := &eventbridge.ListRulesInput{NamePrefix: aws.String(s.rulePrefix)}
	for {
		page, err := s.client.ListRules(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewSchedulingError("list_rules", err)
		}
		for _, rule := range page.Rules {
			names = append(names, aws.ToString(rule.Name))
		}
		if page.NextToken == nil {
			break
		}
		input.NextToken = page.NextToken
	}
	return names, nil
}

func isNotFound(err error) bool {
	var nf *types.ResourceNotFoundException
	return errors.As(err, &nf)
}

// oneShotCron renders an EventBridge cron expression firing once at
// the given instant. EventBridge evaluates cron in UTC.
func oneShotCron(fireAt time.Time) string {
	t := fireAt.UTC()
	return fmt.Sprintf("cron(%d %d %d %d ? %d)", t.Minute(), t.Hour(), t.Day(), int(t.Month()), t.Year())
}

// parseOneShotCron inverts oneShotCron
func parseOneShotCron(expr string) (time.Time, error) {
	inner, ok := strings.CutPrefix(expr, "cron(")
	if !ok {
		return time.Time{}, fmt.Errorf("not a cron expression: %q", expr)
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return time.Time{}, fmt.Errorf("not a cron expression: %q", expr)
	}

	fields := strings.Fields(inner)
	if len(fields) != 6 {
		return time.Time{}, fmt.Errorf("expected 6 cron fields, got %d", len(fields))
	}

	nums := make([]int, 0, 5)
	for i, f := range fields {
		if i == 4 {
			continue // day-of-week placeholder
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, fmt.Errorf("non-numeric cron field %q", f)
		}
		nums = append(nums, n)
	}

	minute, hour, day, month, year := nums[0], nums[1], nums[2], nums[3], nums[4]
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), nil
}
