package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hishab-app/hishab_backend/internal/core/domain"
	portssvc "github.com/hishab-app/hishab_backend/internal/core/ports/services"
	"github.com/hishab-app/hishab_backend/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuditServiceTestSuite struct {
	suite.Suite
	mockAuditRepo *MockAuditRepository
	audit         portssvc.AuditSvc
	actorID       string
}

func (suite *AuditServiceTestSuite) SetupTest() {
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.audit = services.NewAuditService(suite.mockAuditRepo)
	suite.actorID = uuid.NewString()
}

func (suite *AuditServiceTestSuite) TestRecord_MarshalsOldAndNewValues() {
	type payload struct {
		Amount string `json:"amount"`
	}

	var saved domain.AuditRecord
	suite.mockAuditRepo.On("SaveAuditRecord", mock.Anything, mock.MatchedBy(func(rec domain.AuditRecord) bool {
		saved = rec
		return rec.TableName == "transactions" && rec.RecordID == "txn-1" && rec.OperationType == domain.OperationUpdate
	})).Return(nil)

	suite.audit.Record(context.Background(), "transactions", "txn-1", domain.OperationUpdate,
		payload{Amount: "100"}, payload{Amount: "150"}, suite.actorID, "amount changed")

	suite.mockAuditRepo.AssertExpectations(suite.T())

	var oldVals, newVals payload
	suite.Require().NoError(json.Unmarshal(saved.OldValues, &oldVals))
	suite.Require().NoError(json.Unmarshal(saved.NewValues, &newVals))
	suite.Equal("100", oldVals.Amount)
	suite.Equal("150", newVals.Amount)
	suite.Equal(suite.actorID, saved.ActorID)
	suite.Equal("amount changed", saved.Description)
}

func (suite *AuditServiceTestSuite) TestRecord_NilSidesStayEmpty() {
	suite.mockAuditRepo.On("SaveAuditRecord", mock.Anything, mock.MatchedBy(func(rec domain.AuditRecord) bool {
		return rec.OldValues == nil && rec.NewValues != nil
	})).Return(nil)

	suite.audit.Record(context.Background(), "fx_rates", "rate-1", domain.OperationCreate,
		nil, map[string]string{"rate": "110"}, suite.actorID, "rate created")

	suite.mockAuditRepo.AssertExpectations(suite.T())
}

// A failed audit write never propagates: the financial effect is already
// authoritative.
func (suite *AuditServiceTestSuite) TestRecord_SwallowsWriteFailure() {
	suite.mockAuditRepo.On("SaveAuditRecord", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	suite.NotPanics(func() {
		suite.audit.Record(context.Background(), "journal_entries", "entry-1", domain.OperationCreate,
			nil, map[string]string{"entry": "JE-2024-0001"}, suite.actorID, "auto posting")
	})

	suite.mockAuditRepo.AssertExpectations(suite.T())
}

// Unmarshalable values degrade to an audit record without that side rather
// than failing the caller.
func (suite *AuditServiceTestSuite) TestRecord_UnmarshalableValueDegrades() {
	suite.mockAuditRepo.On("SaveAuditRecord", mock.Anything, mock.MatchedBy(func(rec domain.AuditRecord) bool {
		return rec.NewValues == nil
	})).Return(nil)

	suite.NotPanics(func() {
		suite.audit.Record(context.Background(), "transactions", "txn-1", domain.OperationCreate,
			nil, make(chan int), suite.actorID, "bad payload")
	})

	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func TestAuditServiceSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}
