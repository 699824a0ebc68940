package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	queryOuts    []*dynamodb.QueryOutput
	queryErr     error
	queryCalls   int
	lastGetInput *dynamodb.GetItemInput
	lastQueryIn  *dynamodb.QueryInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQueryIn = in
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.queryCalls >= len(f.queryOuts) {
		return &dynamodb.QueryOutput{}, nil
	}
	out := f.queryOuts[f.queryCalls]
	f.queryCalls++
	return out, nil
}

func str(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func makeMetaItem(title, description string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":          str("SURVEY#sv-1"),
		"SK":          str(skMeta),
		"title":       str(title),
		"description": str(description),
		"createdAt":   str("2026-03-01T09:00:00Z"),
	}
}

func makeQuestionItem(column, label string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":    str("SURVEY#sv-1"),
		"SK":    str(skPrefixQuestion + column),
		"label": str(label),
	}
}

func makeResponseItem(id, submittedAt string, answers map[string]string) map[string]types.AttributeValue {
	m := make(map[string]types.AttributeValue, len(answers))
	for k, v := range answers {
		m[k] = str(v)
	}
	return map[string]types.AttributeValue{
		"PK":          str("SURVEY#sv-1"),
		"SK":          str(skPrefixResponse + id),
		"submittedAt": str(submittedAt),
		"answers":     &types.AttributeValueMemberM{Value: m},
	}
}

func mustNewStore(t *testing.T, db *fakeDynamo) *SurveyStore {
	t.Helper()
	s, err := New(db, "test-table")
	require.NoError(t, err)
	return s
}

func TestGetSurvey_HappyPath(t *testing.T) {
	db := &fakeDynamo{
		getOut: &dynamodb.GetItemOutput{Item: makeMetaItem("Customer Survey", "Quarterly feedback")},
		queryOuts: []*dynamodb.QueryOutput{{
			Items: []map[string]types.AttributeValue{
				makeQuestionItem("age_group", "What is your age group?"),
				makeQuestionItem("satisfaction", "How satisfied are you?"),
			},
		}},
	}
	s := mustNewStore(t, db)
	meta, err := s.GetSurvey(context.Background(), "sv-1")
	require.NoError(t, err)
	require.Equal(t, "sv-1", meta.SurveyID)
	require.Equal(t, "Customer Survey", meta.Title)
	require.Equal(t, "Quarterly feedback", meta.Description)
	require.Equal(t, "2026-03-01T09:00:00Z", meta.CreatedAt)
	require.Equal(t, map[string]string{
		"age_group":    "What is your age group?",
		"satisfaction": "How satisfied are you?",
	}, meta.Questions)
	require.NotNil(t, db.lastGetInput)
}

func TestGetSurvey_QuestionLabelFallsBackToColumn(t *testing.T) {
	item := map[string]types.AttributeValue{
		"PK": str("SURVEY#sv-1"),
		"SK": str(skPrefixQuestion + "region"),
	}
	db := &fakeDynamo{
		getOut:    &dynamodb.GetItemOutput{Item: makeMetaItem("S", "")},
		queryOuts: []*dynamodb.QueryOutput{{Items: []map[string]types.AttributeValue{item}}},
	}
	s := mustNewStore(t, db)
	meta, err := s.GetSurvey(context.Background(), "sv-1")
	require.NoError(t, err)
	require.Equal(t, "region", meta.Questions["region"])
}

func TestGetSurvey_NotFound(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	s := mustNewStore(t, db)
	_, err := s.GetSurvey(context.Background(), "sv-missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestGetSurvey_GetItemError(t *testing.T) {
	db := &fakeDynamo{getErr: errors.New("boom")}
	s := mustNewStore(t, db)
	_, err := s.GetSurvey(context.Background(), "sv-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "GetSurvey")
}

func TestGetSurvey_QuestionsQueryError(t *testing.T) {
	db := &fakeDynamo{
		getOut:   &dynamodb.GetItemOutput{Item: makeMetaItem("S", "")},
		queryErr: errors.New("ResourceNotFoundException"),
	}
	s := mustNewStore(t, db)
	_, err := s.GetSurvey(context.Background(), "sv-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "questions")
}

func TestGetSurvey_EmptyID(t *testing.T) {
	s := mustNewStore(t, &fakeDynamo{})
	_, err := s.GetSurvey(context.Background(), " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestGetResponses_HappyPath(t *testing.T) {
	db := &fakeDynamo{
		queryOuts: []*dynamodb.QueryOutput{{
			Items: []map[string]types.AttributeValue{
				makeResponseItem("2026-03-02T10:00:00Z#r1", "2026-03-02T10:00:00Z", map[string]string{"satisfaction": "4"}),
				makeResponseItem("2026-03-02T11:00:00Z#r2", "2026-03-02T11:00:00Z", map[string]string{"satisfaction": "5"}),
			},
		}},
	}
	s := mustNewStore(t, db)
	resps, err := s.GetResponses(context.Background(), "sv-1")
	require.NoError(t, err)
	require.Len(t, resps, 2)
	require.Equal(t, "2026-03-02T10:00:00Z#r1", resps[0].ResponseID)
	require.Equal(t, "4", resps[0].Answers["satisfaction"])
	require.Equal(t, "2026-03-02T11:00:00Z", resps[1].SubmittedAt)
}

func TestGetResponses_Paginates(t *testing.T) {
	db := &fakeDynamo{
		queryOuts: []*dynamodb.QueryOutput{
			{
				Items: []map[string]types.AttributeValue{
					makeResponseItem("r1", "2026-03-02T10:00:00Z", map[string]string{"a": "1"}),
				},
				LastEvaluatedKey: map[string]types.AttributeValue{"PK": str("SURVEY#sv-1")},
			},
			{
				Items: []map[string]types.AttributeValue{
					makeResponseItem("r2", "2026-03-02T11:00:00Z", map[string]string{"a": "2"}),
				},
			},
		},
	}
	s := mustNewStore(t, db)
	resps, err := s.GetResponses(context.Background(), "sv-1")
	require.NoError(t, err)
	require.Len(t, resps, 2)
	require.Equal(t, 2, db.queryCalls)
}

func TestGetResponses_EmptyResult(t *testing.T) {
	db := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{{}}}
	s := mustNewStore(t, db)
	resps, err := s.GetResponses(context.Background(), "sv-1")
	require.NoError(t, err)
	require.Empty(t, resps)
}

func TestGetResponses_QueryError(t *testing.T) {
	db := &fakeDynamo{queryErr: errors.New("throttled")}
	s := mustNewStore(t, db)
	_, err := s.GetResponses(context.Background(), "sv-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "GetResponses")
}

func TestGetResponses_MalformedItem_MissingAnswers(t *testing.T) {
	item := map[string]types.AttributeValue{
		"PK": str("SURVEY#sv-1"),
		"SK": str(skPrefixResponse + "r1"),
	}
	db := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{{Items: []map[string]types.AttributeValue{item}}}}
	s := mustNewStore(t, db)
	_, err := s.GetResponses(context.Background(), "sv-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "answers")
}

func TestGetResponses_SkipsNonStringAnswerValues(t *testing.T) {
	item := makeResponseItem("r1", "2026-03-02T10:00:00Z", map[string]string{"kept": "yes"})
	answers := item["answers"].(*types.AttributeValueMemberM)
	answers.Value["dropped"] = &types.AttributeValueMemberN{Value: "42"}

	db := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{{Items: []map[string]types.AttributeValue{item}}}}
	s := mustNewStore(t, db)
	resps, err := s.GetResponses(context.Background(), "sv-1")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"kept": "yes"}, resps[0].Answers)
}

func TestGetResponses_KeyConditionExpression(t *testing.T) {
	db := &fakeDynamo{queryOuts: []*dynamodb.QueryOutput{{}}}
	s := mustNewStore(t, db)
	_, err := s.GetResponses(context.Background(), "sv-1")
	require.NoError(t, err)
	require.Equal(t, "PK = :pk AND begins_with(SK, :prefix)", *db.lastQueryIn.KeyConditionExpression)
	require.Equal(t, "SURVEY#sv-1", db.lastQueryIn.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, skPrefixResponse, db.lastQueryIn.ExpressionAttributeValues[":prefix"].(*types.AttributeValueMemberS).Value)
}

func TestGetResponses_EmptyID(t *testing.T) {
	s := mustNewStore(t, &fakeDynamo{})
	_, err := s.GetResponses(context.Background(), " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestSurveyPK(t *testing.T) {
	require.Equal(t, "SURVEY#my-survey", surveyPK("my-survey"))
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, "test-table")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNew_EmptyTableName(t *testing.T) {
	_, err := New(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
