package actors

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
	"github.com/KirkDiggler/rule-elements/internal/repositories/actors/mocks"
	"github.com/KirkDiggler/rule-elements/internal/testutils"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient   *redis.Client
	mock         redismock.ClientMock
	repo         Repository
	mockCtrl     *gomock.Controller
	timeProvider *mocks.MockTimeProvider
	now          time.Time
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.mockCtrl = gomock.NewController(s.T())
	s.timeProvider = mocks.NewMockTimeProvider(s.mockCtrl)
	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	repo, err := NewRedis(&RedisRepoConfig{Client: s.mockClient, TimeProvider: s.timeProvider})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) encoded(actor *document.ActorSource) string {
	b, err := json.Marshal(Data{Actor: actor, UpdatedAt: s.now})
	s.Require().NoError(err)
	return string(b)
}

func (s *RedisRepoTestSuite) TestPut() {
	ctx := context.Background()
	actor := testutils.CreateTestCharacter("char-1", "Valeros", 3)
	s.timeProvider.EXPECT().Now().Return(s.now).Times(2)

	s.mock.ExpectSet("actor:char-1", s.encoded(actor), 0).SetVal("OK")
	s.mock.ExpectSAdd(indexKey, "char-1").SetVal(1)
	s.NoError(s.repo.Put(ctx, actor))

	s.mock.ExpectSet("actor:char-1", s.encoded(actor), 0).SetErr(errors.New("redis error"))
	err := s.repo.Put(ctx, actor)
	s.Error(err)
	s.Equal(dnderr.CodeUnavailable, dnderr.GetCode(err))
}

func (s *RedisRepoTestSuite) TestPut_Validation() {
	ctx := context.Background()

	s.True(dnderr.IsInvalidArgument(s.repo.Put(ctx, nil)))
	s.True(dnderr.IsInvalidArgument(s.repo.Put(ctx, &document.ActorSource{Name: "nameless"})))

	broken := testutils.CreateTestCharacter("char-1", "Valeros", 1, &document.ItemSource{Name: "No ID"})
	s.True(dnderr.IsInvalidArgument(s.repo.Put(ctx, broken)))
}

func (s *RedisRepoTestSuite) TestGet() {
	ctx := context.Background()
	actor := testutils.CreateTestCharacter("char-1", "Valeros", 3,
		testutils.CreateTestItem("item-1", "Shield Block", "feat"))

	s.mock.ExpectGet("actor:char-1").SetVal(s.encoded(actor))
	got, err := s.repo.Get(ctx, "char-1")
	s.Require().NoError(err)
	s.Equal("Valeros", got.Name)
	s.Require().Len(got.Items, 1)
	s.Equal("item-1", got.Items[0].ID)

	s.mock.ExpectGet("actor:missing").RedisNil()
	_, err = s.repo.Get(ctx, "missing")
	s.True(dnderr.IsNotFound(err))
	s.Equal("missing", dnderr.GetMeta(err)["actor_id"])

	s.mock.ExpectGet("actor:char-1").SetErr(errors.New("connection refused"))
	_, err = s.repo.Get(ctx, "char-1")
	s.Equal(dnderr.CodeUnavailable, dnderr.GetCode(err))

	_, err = s.repo.Get(ctx, "")
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *RedisRepoTestSuite) TestDelete() {
	ctx := context.Background()

	s.mock.ExpectDel("actor:char-1").SetVal(1)
	s.mock.ExpectSRem(indexKey, "char-1").SetVal(1)
	s.NoError(s.repo.Delete(ctx, "char-1"))

	s.mock.ExpectDel("actor:char-1").SetVal(0)
	s.mock.ExpectSRem(indexKey, "char-1").SetVal(0)
	s.True(dnderr.IsNotFound(s.repo.Delete(ctx, "char-1")))
}

func (s *RedisRepoTestSuite) TestList() {
	ctx := context.Background()
	s.mock.MatchExpectationsInOrder(false)

	first := testutils.CreateTestCharacter("a", "Amiri", 1)
	second := testutils.CreateTestCharacter("b", "Kyra", 2)

	s.mock.ExpectSMembers(indexKey).SetVal([]string{"b", "a"})
	s.mock.ExpectGet("actor:a").SetVal(s.encoded(first))
	s.mock.ExpectGet("actor:b").SetVal(s.encoded(second))

	got, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("Amiri", got[0].Name)
	s.Equal("Kyra", got[1].Name)
}

func (s *RedisRepoTestSuite) TestList_MissingMember() {
	ctx := context.Background()
	s.mock.MatchExpectationsInOrder(false)

	s.mock.ExpectSMembers(indexKey).SetVal([]string{"gone"})
	s.mock.ExpectGet("actor:gone").RedisNil()

	_, err := s.repo.List(ctx)
	s.True(dnderr.IsNotFound(err))
}

func TestNewRedis_RequiresClient(t *testing.T) {
	_, err := NewRedis(nil)
	if !dnderr.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
