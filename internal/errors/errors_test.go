package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_PreservesCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "plain error becomes internal", err: fmt.Errorf("boom"), wantCode: CodeInternalError},
		{name: "user input keeps code", err: UserInput("Please select a target column"), wantCode: CodeUserInput},
		{name: "server reported keeps code", err: ServerReported("Target column contains only null values."), wantCode: CodeServerReported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, "training failed")
			assert.Equal(t, tt.wantCode, GetCode(wrapped))
			assert.True(t, IsAppError(wrapped))
			assert.True(t, Is(wrapped, tt.err))
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, Wrapf(nil, "ignored %d", 1))
	assert.Nil(t, WithCode(CodeTransport, nil))
}

func TestUserMessage(t *testing.T) {
	server := ServerReported("All models failed to train. Please check your data and try again.")
	assert.Equal(t, server.Message, UserMessage(Wrap(server, "train request")))

	transport := Transport("train request failed", fmt.Errorf("connection refused"))
	assert.Equal(t, "train request failed: connection refused", UserMessage(transport))
	assert.Equal(t, CodeTransport, GetCode(transport))

	assert.Equal(t, "", UserMessage(nil))
}

func TestIsUserInput(t *testing.T) {
	assert.True(t, IsUserInput(UserInput("Please select a file first.")))
	assert.False(t, IsUserInput(ServerReported("nope")))
	assert.False(t, IsUserInput(fmt.Errorf("plain")))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeNotFound, fmt.Errorf("model svm"))
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, "model svm: model svm", err.Error())

	recoded := WithCode(CodeNotFound, ServerReported("Failed to download model"))
	assert.Equal(t, CodeNotFound, GetCode(recoded))
	assert.True(t, IsNotFound(recoded))
	assert.False(t, IsNotFound(ServerReported("Failed to download model")))
	assert.Equal(t, "Failed to download model", UserMessage(Wrap(recoded, "download svm")))
}
