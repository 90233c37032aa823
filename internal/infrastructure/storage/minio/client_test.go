package minio

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/PrintShop-Customizer/internal/testutil"
	apperrors "github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

type ClientTestSuite struct {
	suite.Suite
	api    *mockAPI
	log    *testutil.MockLogger
	client *Client
	ctx    context.Context
}

func (s *ClientTestSuite) SetupTest() {
	s.api = new(mockAPI)
	s.log = testutil.NewMockLogger()
	s.client = NewClientWithAPI(s.api, testConfig(), s.log)
	s.ctx = context.Background()
}

func (s *ClientTestSuite) TestEnsureBuckets_CreatesMissing() {
	s.api.On("BucketExists", s.ctx, "customizer-logos").Return(true, nil)
	s.api.On("BucketExists", s.ctx, "customizer-textures").Return(false, nil)
	s.api.On("MakeBucket", s.ctx, "customizer-textures", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)
	s.api.On("SetBucketLifecycle", s.ctx, "customizer-textures", mock.MatchedBy(func(c *lifecycle.Configuration) bool {
		return len(c.Rules) == 1 && c.Rules[0].Expiration.Days == TextureRetentionDays
	})).Return(nil)

	s.Require().NoError(s.client.EnsureBuckets(s.ctx))
	s.api.AssertExpectations(s.T())
	s.True(s.log.HasMessage("info", "Created bucket"))
}

func (s *ClientTestSuite) TestEnsureBuckets_LifecycleFailureIsNotFatal() {
	s.api.On("BucketExists", s.ctx, mock.Anything).Return(true, nil)
	s.api.On("SetBucketLifecycle", s.ctx, "customizer-textures", mock.Anything).Return(errors.New("not supported"))

	s.NoError(s.client.EnsureBuckets(s.ctx))
	s.True(s.log.HasMessage("warn", "Failed to set lifecycle for texture bucket"))
}

func (s *ClientTestSuite) TestEnsureBuckets_MakeBucketFails() {
	s.api.On("BucketExists", s.ctx, "customizer-logos").Return(false, nil)
	s.api.On("MakeBucket", s.ctx, "customizer-logos", mock.Anything).Return(errors.New("denied"))

	err := s.client.EnsureBuckets(s.ctx)
	s.True(apperrors.IsCode(err, apperrors.ErrCodeStorageError))
}

func (s *ClientTestSuite) TestHealthCheck() {
	s.api.On("ListBuckets", s.ctx).Return([]minio.BucketInfo{}, nil)
	s.api.On("BucketExists", s.ctx, "customizer-logos").Return(true, nil)
	s.api.On("BucketExists", s.ctx, "customizer-textures").Return(false, nil)

	err := s.client.HealthCheck(s.ctx)
	s.True(apperrors.IsCode(err, apperrors.ErrCodeStorageError))

	s.Require().NoError(s.client.Close())
	s.Equal(ErrClientClosed, s.client.HealthCheck(s.ctx))
}

func (s *ClientTestSuite) TestPresignGet_DefaultExpiry() {
	u, _ := url.Parse("http://localhost:9000/customizer-textures/textures/abc.webp?X-Amz-Signature=x")
	s.api.On("PresignedGetObject", s.ctx, "customizer-textures", "textures/abc.webp", time.Hour, url.Values(nil)).Return(u, nil)

	got, err := s.client.PresignGet(s.ctx, "customizer-textures", "textures/abc.webp", 0)
	s.Require().NoError(err)
	s.Equal(u.String(), got)
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

//Personal.AI order the ending
