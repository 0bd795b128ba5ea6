//go:build unit

package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"tutor-booking/internal/domain/checkout"
	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/handler/api"
	reqdto "tutor-booking/internal/handler/dto/request"
	"tutor-booking/internal/usecase/commands"
	"tutor-booking/tests/common/httptest"
	commandsmock "tutor-booking/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type stubVerifier struct {
	n   payment.Notification
	ok  bool
	err error
	ids []string
}

func (v *stubVerifier) VerifyEvent(_ context.Context, eventID string) (payment.Notification, bool, error) {
	v.ids = append(v.ids, eventID)
	return v.n, v.ok, v.err
}

type WebhookHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	verifier     *stubVerifier
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.verifier = &stubVerifier{}

	h := api.NewWebhookHandler(s.verifier, s.mockCommands)
	s.router.POST("/webhooks/omise", h.Omise)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) TestOmise() {
	url := "/webhooks/omise"
	req := reqdto.OmiseWebhookRequest{ID: "evnt_test_1", Key: "charge.complete"}
	paid := payment.Notification{
		IntentID: "chrg_test_1",
		Outcome:  payment.OutcomeSucceeded,
		Amount:   payment.MustMoney(100000, "thb"),
	}

	s.Run("verified charge is settled", func() {
		s.verifier.n, s.verifier.ok, s.verifier.err = paid, true, nil
		s.mockCommands.EXPECT().HandlePaymentNotification(gomock.Any(), paid).
			Return(&commands.SettlementResult{IntentID: "chrg_test_1", State: checkout.StateCommitted}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, req, "")

		s.Equal(http.StatusOK, rec.Code)
		s.Contains(s.verifier.ids, "evnt_test_1")
	})

	s.Run("unrelated event is acknowledged", func() {
		s.verifier.n, s.verifier.ok, s.verifier.err = payment.Notification{}, false, nil

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, req, "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("unknown charge is acknowledged", func() {
		s.verifier.n, s.verifier.ok, s.verifier.err = paid, true, nil
		s.mockCommands.EXPECT().HandlePaymentNotification(gomock.Any(), paid).
			Return(nil, commands.ErrCheckoutNotFound)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, req, "")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("unverifiable event is refused", func() {
		s.verifier.n, s.verifier.ok, s.verifier.err = payment.Notification{}, false, errors.New("event not found")

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, req, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "could not be verified")
	})

	s.Run("database failure asks Omise to retry", func() {
		s.verifier.n, s.verifier.ok, s.verifier.err = paid, true, nil
		s.mockCommands.EXPECT().HandlePaymentNotification(gomock.Any(), paid).
			Return(nil, errors.New("deadlock"))

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, req, "")
		s.Equal(http.StatusInternalServerError, rec.Code)
	})

	s.Run("missing event id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"key": "charge.complete"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})
}
