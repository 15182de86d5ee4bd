package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"pingwards-backend/application/ports"
	"pingwards-backend/domain/core/entities"
	"pingwards-backend/domain/core/valueobjects"
	pkgerrors "pingwards-backend/pkg/errors"
	"pingwards-backend/pkg/utils"
)

// ReminderRepository implements ports.ReminderRepository on a
// single-table DynamoDB layout:
//
//	PK = USER#<userID>        SK = REMINDER#<reminderID>
//	GSI1PK = REMINDERID#<id>  GSI1SK = METADATA
//
// GSI1 serves direct lookups by reminder id without knowing the owner.
type ReminderRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewReminderRepository creates a new ReminderRepository
func NewReminderRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.ReminderRepository {
	return &ReminderRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// reminderItem represents the DynamoDB item structure for a reminder
type reminderItem struct {
	PK               string   `dynamodbav:"PK"`
	SK               string   `dynamodbav:"SK"`
	GSI1PK           string   `dynamodbav:"GSI1PK"`
	GSI1SK           string   `dynamodbav:"GSI1SK"`
	EntityType       string   `dynamodbav:"EntityType"`
	ReminderID       string   `dynamodbav:"ReminderID"`
	UserID           string   `dynamodbav:"UserID"`
	Text             string   `dynamodbav:"Text"`
	CreatedDate      string   `dynamodbav:"CreatedDate"`
	NotificationDate string   `dynamodbav:"NotificationDate"`
	Completed        bool     `dynamodbav:"Completed"`
	CompletedAt      string   `dynamodbav:"CompletedAt,omitempty"`
	Category         string   `dynamodbav:"Category"`
	Priority         string   `dynamodbav:"Priority"`
	Tags             []string `dynamodbav:"Tags,omitempty"`
	NotificationID   string   `dynamodbav:"NotificationID,omitempty"`
}

func userPK(userID string) string     { return fmt.Sprintf("USER#%s", userID) }
func reminderSK(id string) string     { return fmt.Sprintf("REMINDER#%s", id) }
func reminderGSI1PK(id string) string { return fmt.Sprintf("REMINDERID#%s", id) }

// Create persists a new reminder. Writing over an existing id is a
// conflict, not an upsert.
func (r *ReminderRepository) Create(ctx context.Context, reminder *entities.Reminder) error {
	item := toItem(reminder)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewStorageError("marshal_reminder", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(SK)"),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewConflictError(fmt.Sprintf("reminder %s already exists", item.ReminderID))
		}
		r.logger.Error("failed to put reminder",
			zap.String("reminderID", item.ReminderID),
			zap.Error(err),
		)
		return pkgerrors.NewStorageError("create_reminder", err)
	}

	r.logger.Debug("reminder stored",
		zap.String("reminderID", item.ReminderID),
		zap.String("PK", item.PK),
		zap.String("SK", item.SK),
	)
	return nil
}

// GetByID retrieves a reminder through GSI1
func (r *ReminderRepository) GetByID(ctx context.Context, id valueobjects.ReminderID) (*entities.Reminder, error) {
	item, err := r.getItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromItem(item)
}

// Update merges the change set into the stored record. Unknown ids
// surface as not found via the conditional write.
func (r *ReminderRepository) Update(ctx context.Context, id valueobjects.ReminderID, changes ports.ReminderChanges) error {
	if changes.IsEmpty() {
		return nil
	}

	// the table key needs the owner, resolve via GSI1 first
	item, err := r.getItem(ctx, id)
	if err != nil {
		return err
	}

	update := expression.UpdateBuilder{}
	if changes.Text != nil {
		update = update.Set(expression.Name("Text"), expression.Value(*changes.Text))
	}
	if changes.NotificationDate != nil {
		update = update.Set(expression.Name("NotificationDate"), expression.Value(utils.FormatRFC3339(*changes.NotificationDate)))
	}
	if changes.Completed != nil {
		update = update.Set(expression.Name("Completed"), expression.Value(*changes.Completed))
	}
	if changes.CompletedAt != nil {
		update = update.Set(expression.Name("CompletedAt"), expression.Value(utils.FormatRFC3339(*changes.CompletedAt)))
	}
	if changes.ClearCompletedAt {
		update = update.Remove(expression.Name("CompletedAt"))
	}
	if changes.Category != nil {
		update = update.Set(expression.Name("Category"), expression.Value(*changes.Category))
	}
	if changes.Priority != nil {
		update = update.Set(expression.Name("Priority"), expression.Value(*changes.Priority))
	}
	if changes.Tags != nil {
		update = update.Set(expression.Name("Tags"), expression.Value(*changes.Tags))
	}
	if changes.NotificationID != nil {
		if *changes.NotificationID == "" {
			update = update.Remove(expression.Name("NotificationID"))
		} else {
			update = update.Set(expression.Name("NotificationID"), expression.Value(*changes.NotificationID))
		}
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("SK"))).
		Build()
	if err != nil {
		return pkgerrors.NewStorageError("build_update_expression", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: item.PK},
			"SK": &types.AttributeValueMemberS{Value: item.SK},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewNotFoundError("reminder")
		}
		r.logger.Error("failed to update reminder",
			zap.String("reminderID", id.String()),
			zap.Error(err),
		)
		return pkgerrors.NewStorageError("update_reminder", err)
	}

	return nil
}

// Delete removes a reminder. Deleting an id that is already gone is
// not an error.
func (r *ReminderRepository) Delete(ctx context.Context, id valueobjects.ReminderID) error {
	item, err := r.getItem(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil
		}
		return err
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: item.PK},
			"SK": &types.AttributeValueMemberS{Value: item.SK},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		r.logger.Error("failed to delete reminder",
			zap.String("reminderID", id.String()),
			zap.Error(err),
		)
		return pkgerrors.NewStorageError("delete_reminder", err)
	}

	r.logger.Debug("reminder deleted", zap.String("reminderID", id.String()))
	return nil
}

// ListByUser retrieves all reminders under a user's partition
func (r *ReminderRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Reminder, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: userPK(userID)},
			":sk": &types.AttributeValueMemberS{Value: "REMINDER#"},
		},
	}

	reminders := []*entities.Reminder{}
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewStorageError("list_reminders", err)
		}
		for _, raw := range page.Items {
			var item reminderItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("failed to unmarshal reminder item", zap.Error(err))
				continue
			}
			reminder, err := fromItem(&item)
			if err != nil {
				r.logger.Warn("skipping corrupt reminder record",
					zap.String("reminderID", item.ReminderID),
					zap.Error(err),
				)
				continue
			}
			reminders = append(reminders, reminder)
		}
	}

	return reminders, nil
}

// ListScheduled scans for reminders carrying a notification id. This
// is a table scan and runs once at startup.
func (r *ReminderRepository) ListScheduled(ctx context.Context) ([]*entities.Reminder, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.And(
			expression.AttributeExists(expression.Name("NotificationID")),
			expression.Equal(expression.Name("EntityType"), expression.Value("REMINDER")),
		)).
		Build()
	if err != nil {
		return nil, pkgerrors.NewStorageError("build_scan_expression", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	reminders := []*entities.Reminder{}
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewStorageError("list_scheduled", err)
		}
		for _, raw := range page.Items {
			var item reminderItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("failed to unmarshal reminder item", zap.Error(err))
				continue
			}
			reminder, err := fromItem(&item)
			if err != nil {
				r.logger.Warn("skipping corrupt reminder record",
					zap.String("reminderID", item.ReminderID),
					zap.Error(err),
				)
				continue
			}
			reminders = append(reminders, reminder)
		}
	}

	return reminders, nil
}

// getItem resolves a reminder item by id through GSI1
func (r *ReminderRepository) getItem(ctx context.Context, id valueobjects.ReminderID) (*reminderItem, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: reminderGSI1PK(id.String())},
			":sk": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		Limit: aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		r.logger.Error("failed to query reminder",
			zap.String("reminderID", id.String()),
			zap.Error(err),
		)
		return nil, pkgerrors.NewStorageError("get_reminder", err)
	}

	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("reminder")
	}

	var item reminderItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, pkgerrors.NewStorageError("unmarshal_reminder", err)
	}
	return &item, nil
}

func toItem(reminder *entities.Reminder) reminderItem {
	id := reminder.ID().String()
	item := reminderItem{
		PK:               userPK(reminder.UserID()),
		SK:               reminderSK(id),
		GSI1PK:           reminderGSI1PK(id),
		GSI1SK:           "METADATA",
		EntityType:       "REMINDER",
		ReminderID:       id,
		UserID:           reminder.UserID(),
		Text:             reminder.Text().String(),
		CreatedDate:      utils.FormatRFC3339(reminder.CreatedDate()),
		NotificationDate: utils.FormatRFC3339(reminder.NotificationDate().Time()),
		Completed:        reminder.Completed(),
		Category:         reminder.Category(),
		Priority:         reminder.Priority(),
		Tags:             reminder.Tags(),
		NotificationID:   reminder.NotificationID(),
	}
	if at := reminder.CompletedAt(); at != nil {
		item.CompletedAt = utils.FormatRFC3339(*at)
	}
	return item
}

func fromItem(item *reminderItem) (*entities.Reminder, error) {
	id, err := valueobjects.NewReminderIDFromString(item.ReminderID)
	if err != nil {
		return nil, pkgerrors.NewStorageError("parse_reminder_id", err)
	}

	text, err := valueobjects.NewReminderText(item.Text)
	if err != nil {
		return nil, pkgerrors.NewStorageError("parse_reminder_text", err)
	}

	createdDate, err := utils.ParseRFC3339(item.CreatedDate)
	if err != nil {
		return nil, pkgerrors.NewStorageError("parse_created_date", err)
	}

	rawDate, err := utils.ParseRFC3339(item.NotificationDate)
	if err != nil {
		return nil, pkgerrors.NewStorageError("parse_notification_date", err)
	}
	notificationDate, err := valueobjects.NewNotificationTime(rawDate)
	if err != nil {
		return nil, pkgerrors.NewStorageError("parse_notification_date", err)
	}

	var completedAt *time.Time
	if item.CompletedAt != "" {
		at, err := utils.ParseRFC3339(item.CompletedAt)
		if err != nil {
			return nil, pkgerrors.NewStorageError("parse_completed_at", err)
		}
		completedAt = &at
	}

	return entities.ReconstructReminder(
		id,
		item.UserID,
		text,
		createdDate,
		notificationDate,
		item.Completed,
		completedAt,
		entities.Metadata{
			Category: item.Category,
			Priority: item.Priority,
			Tags:     item.Tags,
		},
		item.NotificationID,
	)
}
