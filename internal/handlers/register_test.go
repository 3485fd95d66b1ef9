package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/avdonin/gw-code-review/internal/services"
)

func TestRegisterHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	type requestBody struct {
		username string
		email    string
		password string
	}

	tests := []struct {
		name         string
		reqBody      requestBody
		mockSetup    func(m *MockRegisterer)
		expectedCode int
		expectedBody map[string]string
		rawBody      string // if set, pass raw body (to simulate invalid JSON)
	}{
		{
			name: "success",
			reqBody: requestBody{
				username: "john",
				email:    "john@example.com",
				password: "secret",
			},
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().
					Register(gomock.Any(), "john", "john@example.com", "secret").
					Return(nil)
			},
			expectedCode: 201,
			expectedBody: map[string]string{"message": "Registration successful. Please log in."},
		},
		{
			name: "duplicate username or email",
			reqBody: requestBody{
				username: "alice",
				email:    "alice@example.com",
				password: "pass",
			},
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().
					Register(gomock.Any(), "alice", "alice@example.com", "pass").
					Return(services.ErrUserAlreadyExists)
			},
			expectedCode: 409,
			expectedBody: map[string]string{"message": "Username or Email already exists."},
		},
		{
			name: "internal server error",
			reqBody: requestBody{
				username: "bob",
				email:    "bob@example.com",
				password: "pass",
			},
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().
					Register(gomock.Any(), "bob", "bob@example.com", "pass").
					Return(errors.New("database failure"))
			},
			expectedCode: 500,
			expectedBody: map[string]string{"message": "Server error during registration."},
		},
		{
			name:         "missing username",
			reqBody:      requestBody{email: "a@b.c", password: "pass"},
			expectedCode: 400,
			expectedBody: map[string]string{"message": "All fields are required."},
		},
		{
			name:         "missing email",
			reqBody:      requestBody{username: "john", password: "pass"},
			expectedCode: 400,
			expectedBody: map[string]string{"message": "All fields are required."},
		},
		{
			name:         "missing password",
			reqBody:      requestBody{username: "john", email: "a@b.c"},
			expectedCode: 400,
			expectedBody: map[string]string{"message": "All fields are required."},
		},
		{
			name:         "whitespace-only username",
			reqBody:      requestBody{username: "   ", email: "a@b.c", password: "pass"},
			expectedCode: 400,
			expectedBody: map[string]string{"message": "All fields are required."},
		},
		{
			name:         "invalid json",
			rawBody:      "{invalid json}",
			expectedCode: 400,
			expectedBody: map[string]string{"message": "All fields are required."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockRegisterer(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewRegisterHandler(mockSvc)

			var req *http.Request
			if tt.rawBody != "" {
				req = httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(tt.rawBody))
			} else {
				bodyBytes, _ := json.Marshal(RegisterRequest{
					Username: tt.reqBody.username,
					Email:    tt.reqBody.email,
					Password: tt.reqBody.password,
				})
				req = httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBuffer(bodyBytes))
			}

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
