package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/prakan1684/SurveyAnalyst/internal/domain"
)

const (
	skMeta           = "META#"
	skPrefixQuestion = "Q#"
	skPrefixResponse = "RESP#"
)

// dynamodbAPI is the minimal DynamoDB interface required by SurveyStore.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Reader defines the survey read operations consumed by the analysis layer.
type Reader interface {
	GetSurvey(ctx context.Context, surveyID string) (domain.SurveyMeta, error)
	GetResponses(ctx context.Context, surveyID string) ([]domain.SurveyResponse, error)
}

// SurveyStore wraps a single DynamoDB table holding survey metadata,
// question definitions and submitted responses:
//
//	PK=SURVEY#<id> SK=META#            survey metadata
//	PK=SURVEY#<id> SK=Q#<column>       one item per question
//	PK=SURVEY#<id> SK=RESP#<ts>#<uuid> one item per submitted response
type SurveyStore struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new SurveyStore.
func New(api dynamodbAPI, tableName string) (*SurveyStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &SurveyStore{api: api, tableName: tableName}, nil
}

// surveyPK returns the DynamoDB partition key for a survey.
func surveyPK(surveyID string) string {
	return "SURVEY#" + surveyID
}

// GetSurvey loads the metadata record and all question items for a survey.
// The questions come back as a column-name to label map.
func (s *SurveyStore) GetSurvey(ctx context.Context, surveyID string) (domain.SurveyMeta, error) {
	if strings.TrimSpace(surveyID) == "" {
		return domain.SurveyMeta{}, errors.New("repository: GetSurvey: survey id is required")
	}

	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: surveyPK(surveyID)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
	})
	if err != nil {
		return domain.SurveyMeta{}, fmt.Errorf("repository: GetSurvey get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.SurveyMeta{}, fmt.Errorf("repository: survey %q not found", surveyID)
	}

	meta := domain.SurveyMeta{SurveyID: surveyID}
	meta.Title, _ = strAttr(out.Item, "title")
	meta.Description, _ = strAttr(out.Item, "description")
	meta.CreatedAt, _ = strAttr(out.Item, "createdAt")

	questions, err := s.queryQuestions(ctx, surveyID)
	if err != nil {
		return domain.SurveyMeta{}, err
	}
	meta.Questions = questions
	return meta, nil
}

// queryQuestions reads every Q# item and builds the column to label map.
func (s *SurveyStore) queryQuestions(ctx context.Context, surveyID string) (map[string]string, error) {
	questions := make(map[string]string)
	err := s.queryPrefix(ctx, surveyID, skPrefixQuestion, func(item map[string]types.AttributeValue) error {
		sk, err := strAttr(item, "SK")
		if err != nil {
			return err
		}
		column := strings.TrimPrefix(sk, skPrefixQuestion)
		if column == "" {
			return nil
		}
		label, _ := strAttr(item, "label")
		if label == "" {
			label = column
		}
		questions[column] = label
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository: GetSurvey questions: %w", err)
	}
	return questions, nil
}

// GetResponses queries all RESP# items for a survey in submission order.
func (s *SurveyStore) GetResponses(ctx context.Context, surveyID string) ([]domain.SurveyResponse, error) {
	if strings.TrimSpace(surveyID) == "" {
		return nil, errors.New("repository: GetResponses: survey id is required")
	}

	var responses []domain.SurveyResponse
	err := s.queryPrefix(ctx, surveyID, skPrefixResponse, func(item map[string]types.AttributeValue) error {
		resp, convErr := itemToResponse(item)
		if convErr != nil {
			return convErr
		}
		responses = append(responses, resp)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repository: GetResponses query: %w", err)
	}
	return responses, nil
}

// queryPrefix pages through every item in the survey partition whose sort key
// starts with prefix, invoking fn per item.
func (s *SurveyStore) queryPrefix(ctx context.Context, surveyID, prefix string, fn func(map[string]types.AttributeValue) error) error {
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.api.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: surveyPK(surveyID)},
				":prefix": &types.AttributeValueMemberS{Value: prefix},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return err
		}
		for _, item := range out.Items {
			if err := fn(item); err != nil {
				return err
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// itemToResponse converts a RESP# attribute map to a SurveyResponse. The
// answers attribute is a string map keyed by question column.
func itemToResponse(item map[string]types.AttributeValue) (domain.SurveyResponse, error) {
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.SurveyResponse{}, err
	}

	resp := domain.SurveyResponse{ResponseID: strings.TrimPrefix(sk, skPrefixResponse)}
	resp.SubmittedAt, _ = strAttr(item, "submittedAt")

	answers, err := mapAttr(item, "answers")
	if err != nil {
		return domain.SurveyResponse{}, err
	}
	resp.Answers = answers
	return resp, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

// mapAttr decodes a map attribute whose values are all strings. Non-string
// members are skipped rather than failing the whole response.
func mapAttr(item map[string]types.AttributeValue, key string) (map[string]string, error) {
	v, ok := item[key]
	if !ok {
		return nil, fmt.Errorf("repository: missing attribute %q", key)
	}
	m, ok := v.(*types.AttributeValueMemberM)
	if !ok {
		return nil, fmt.Errorf("repository: attribute %q is not a map", key)
	}
	out := make(map[string]string, len(m.Value))
	for k, av := range m.Value {
		if s, ok := av.(*types.AttributeValueMemberS); ok {
			out[k] = s.Value
		}
	}
	return out, nil
}
