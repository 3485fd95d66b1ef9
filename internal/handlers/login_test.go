package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/avdonin/gw-code-review/internal/services"
)

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	tests := []struct {
		name         string
		username     string
		password     string
		mockSetup    func(m *MockLoginer)
		expectedCode int
		expectedBody map[string]string
	}{
		{
			name:     "success",
			username: "john",
			password: "secret",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					Login(gomock.Any(), "john", "secret").
					Return("signed-token", userID, nil)
			},
			expectedCode: 200,
			expectedBody: map[string]string{
				"message": "Login successful",
				"token":   "signed-token",
				"userId":  userID.String(),
			},
		},
		{
			name:     "wrong password",
			username: "john",
			password: "wrong",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					Login(gomock.Any(), "john", "wrong").
					Return("", uuid.Nil, services.ErrInvalidCredentials)
			},
			expectedCode: 401,
			expectedBody: map[string]string{"message": "Invalid username or password."},
		},
		{
			name:     "unknown user",
			username: "mallory",
			password: "secret",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					Login(gomock.Any(), "mallory", "secret").
					Return("", uuid.Nil, services.ErrInvalidCredentials)
			},
			expectedCode: 401,
			expectedBody: map[string]string{"message": "Invalid username or password."},
		},
		{
			name:     "missing signing secret",
			username: "john",
			password: "secret",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					Login(gomock.Any(), "john", "secret").
					Return("", uuid.Nil, services.ErrServerMisconfigured)
			},
			expectedCode: 500,
			expectedBody: map[string]string{"message": "Server misconfiguration: signing secret is not set."},
		},
		{
			name:     "internal server error",
			username: "john",
			password: "secret",
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().
					Login(gomock.Any(), "john", "secret").
					Return("", uuid.Nil, errors.New("database failure"))
			},
			expectedCode: 500,
			expectedBody: map[string]string{"message": "Server error during login."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockLoginer(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewLoginHandler(mockSvc)

			bodyBytes, _ := json.Marshal(LoginRequest{
				Username: tt.username,
				Password: tt.password,
			})
			req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBuffer(bodyBytes))

			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			var resp map[string]string
			err := json.Unmarshal(rr.Body.Bytes(), &resp)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBody, resp)
		})
	}
}

// The wrong-password and unknown-user responses must be byte-identical.
func TestLoginHandler_EnumerationSafety(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockLoginer(ctrl)
	handler := NewLoginHandler(mockSvc)

	call := func(username, password string) *httptest.ResponseRecorder {
		mockSvc.EXPECT().
			Login(gomock.Any(), username, password).
			Return("", uuid.Nil, services.ErrInvalidCredentials)

		bodyBytes, _ := json.Marshal(LoginRequest{Username: username, Password: password})
		req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBuffer(bodyBytes))
		rr := httptest.NewRecorder()
		handler(rr, req)
		return rr
	}

	wrongPassword := call("alice", "wrong")
	unknownUser := call("mallory", "whatever")

	assert.Equal(t, wrongPassword.Code, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

// Two successful logins are independent sessions; neither corrupts the other.
func TestLoginHandler_RepeatedLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	mockSvc := NewMockLoginer(ctrl)
	handler := NewLoginHandler(mockSvc)

	mockSvc.EXPECT().
		Login(gomock.Any(), "john", "secret").
		Return("token-1", userID, nil)
	mockSvc.EXPECT().
		Login(gomock.Any(), "john", "secret").
		Return("token-2", userID, nil)

	var tokens []string
	for i := 0; i < 2; i++ {
		bodyBytes, _ := json.Marshal(LoginRequest{Username: "john", Password: "secret"})
		req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBuffer(bodyBytes))
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp LoginResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, userID.String(), resp.UserID)
		tokens = append(tokens, resp.Token)
	}

	assert.NotEqual(t, tokens[0], tokens[1])
}
