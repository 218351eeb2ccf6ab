package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/kurtniculi26/RentAll/internal/domain"
)


// ListingRepo reads the items table. PK: id.
type ListingRepo struct {
	client    dynamodb.ScanAPIClient
	tableName string
}

func NewListingRepo(client dynamodb.ScanAPIClient, tableName string) *ListingRepo {
	return &ListingRepo{client: client, tableName: tableName}
}

// ListBrowsable scans for available, verified listings. The title match is
// applied after the scan because DynamoDB's contains() is case-sensitive.
func (r *ListingRepo) ListBrowsable(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	filter := "#avail = :t AND #verified = :t"
	names := map[string]string{"#avail": fieldAvailable, "#verified": fieldIsVerified}
	values := map[string]types.AttributeValue{":t": &types.AttributeValueMemberBOOL{Value: true}}
	if f.CategoryID != 0 {
		filter += " AND #cat = :cat"
		names["#cat"] = fieldCategoryID
		values[":cat"] = &types.AttributeValueMemberN{Value: strconv.Itoa(f.CategoryID)}
	}

	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})

	q := strings.ToLower(f.Query)
	out := []domain.Listing{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var items []domain.Listing
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal listings: %w", err)
		}
		for _, l := range items {
			if q == "" || strings.Contains(strings.ToLower(l.Title), q) {
				out = append(out, l)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
