package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/kurtniculi26/RentAll/internal/domain"
)

// otpAPI is the slice of the DynamoDB client the ledger uses.
type otpAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	dynamodb.QueryAPIClient
}

// otpItem is the stored shape of an OTP record. Timestamps are Unix
// milliseconds so condition expressions can compare them numerically;
// purge_at is Unix seconds for the table TTL.
type otpItem struct {
	OTPID     string `dynamodbav:"id"`
	Email     string `dynamodbav:"email"`
	Code      string `dynamodbav:"code"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
	IsUsed    bool   `dynamodbav:"is_used"`
	UsedAt    *int64 `dynamodbav:"used_at,omitempty"`
	CreatedAt int64  `dynamodbav:"created_at"`
	PurgeAt   int64  `dynamodbav:"purge_at"`
}

func (it otpItem) record() domain.OTPRecord {
	rec := domain.OTPRecord{
		OTPID:     it.OTPID,
		Email:     it.Email,
		Code:      it.Code,
		ExpiresAt: time.UnixMilli(it.ExpiresAt).UTC(),
		Consumed:  it.IsUsed,
		CreatedAt: time.UnixMilli(it.CreatedAt).UTC(),
	}
	if it.UsedAt != nil {
		t := time.UnixMilli(*it.UsedAt).UTC()
		rec.ConsumedAt = &t
	}
	return rec
}

// OTPRepo is the OTP ledger on DynamoDB.
// PK: id. GSI email-index: email (hash) + expires_at (range).
type OTPRepo struct {
	client    otpAPI
	tableName string
	retention time.Duration
}

// NewOTPRepo builds the ledger. retention is how long past expiry a row is
// kept before the table TTL may remove it.
func NewOTPRepo(client otpAPI, tableName string, retention time.Duration) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName, retention: retention}
}

func (r *OTPRepo) Put(ctx context.Context, rec *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(otpItem{
		OTPID:     rec.OTPID,
		Email:     rec.Email,
		Code:      rec.Code,
		ExpiresAt: rec.ExpiresAt.UnixMilli(),
		IsUsed:    rec.Consumed,
		CreatedAt: rec.CreatedAt.UnixMilli(),
		PurgeAt:   rec.ExpiresAt.Add(r.retention).Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": fieldOTPID},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("otp %s: %w", rec.OTPID, domain.ErrConflict)
	}
	return err
}

func (r *OTPRepo) Get(ctx context.Context, otpID string) (*domain.OTPRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldOTPID, otpID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp %s: %w", otpID, domain.ErrNotFound)
	}
	var it otpItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal otp: %w", err)
	}
	rec := it.record()
	return &rec, nil
}

// FindActive queries the email index for unexpired rows and filters on code
// and is_used. The index is eventually consistent; Consume re-checks on the
// base table.
func (r *OTPRepo) FindActive(ctx context.Context, email, code string, now time.Time) ([]domain.OTPRecord, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexEmail),
		KeyConditionExpression: aws.String("#email = :email AND #exp > :now"),
		FilterExpression:       aws.String("#code = :code AND #used = :false"),
		ExpressionAttributeNames: map[string]string{
			"#email": fieldEmail,
			"#exp":   fieldExpiresAt,
			"#code":  fieldCode,
			"#used":  fieldIsUsed,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
			":now":   &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixMilli(), 10)},
			":code":  &types.AttributeValueMemberS{Value: code},
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
		ScanIndexForward: aws.Bool(false),
	})

	var out []domain.OTPRecord
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []otpItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal otps: %w", err)
		}
		for _, it := range items {
			out = append(out, it.record())
		}
	}
	return out, nil
}

// Consume flips is_used in a single conditional write. A failed condition
// means another caller consumed it first or it expired: domain.ErrConflict.
func (r *OTPRepo) Consume(ctx context.Context, otpID string, now time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldIsUsed: true,
		fieldUsedAt: now.UnixMilli(),
	})
	if err != nil {
		return err
	}
	// #f0 is is_used (keys are sorted).
	ue.Names["#exp"] = fieldExpiresAt
	ue.Values[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	ue.Values[":now"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixMilli(), 10)}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldOTPID, otpID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("#f0 = :false AND #exp > :now"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("consume otp %s: %w", otpID, domain.ErrConflict)
	}
	return err
}
