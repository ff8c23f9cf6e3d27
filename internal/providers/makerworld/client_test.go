package makerworld

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHTTPClient records the request and plays back a canned response
type fakeHTTPClient struct {
	gotURL     string
	gotHeaders map[string]string
	response   string
	err        error
}

func (f *fakeHTTPClient) Get(_ context.Context, url string, headers map[string]string, result interface{}) error {
	f.gotURL = url
	f.gotHeaders = headers
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.response), result)
}

func (f *fakeHTTPClient) GetBytes(context.Context, string, map[string]string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeHTTPClient) Post(context.Context, string, string, map[string]string, io.Reader) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func TestListTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("parses hits and sends session headers", func(t *testing.T) {
		httpClient := &fakeHTTPClient{
			response: `{"hits": [
				{"id": 1, "title": "Benchy", "status": 2, "weight": 12.5},
				{"id": 2, "title": "Vase", "status": 1}
			]}`,
		}
		client := NewClient(httpClient, "https://makerworld.example/api/v1/user-service/my/tasks", "session-token", 100)

		tasks, err := client.ListTasks(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, int64(1), tasks[0].ID)
		assert.Equal(t, "Vase", tasks[1].Title)

		assert.Equal(t, "https://makerworld.example/api/v1/user-service/my/tasks?limit=100", httpClient.gotURL)
		assert.Equal(t, "token=session-token", httpClient.gotHeaders["Cookie"])
		assert.Equal(t, "makerworld", httpClient.gotHeaders["x-bbl-app-source"])
		assert.Equal(t, "web", httpClient.gotHeaders["x-bbl-client-type"])
		assert.NotEmpty(t, httpClient.gotHeaders["Referer"])
	})

	t.Run("empty hits yields empty slice", func(t *testing.T) {
		httpClient := &fakeHTTPClient{response: `{"hits": []}`}
		client := NewClient(httpClient, "https://makerworld.example/tasks", "session-token", 50)

		tasks, err := client.ListTasks(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("missing token fails before any request", func(t *testing.T) {
		httpClient := &fakeHTTPClient{}
		client := NewClient(httpClient, "https://makerworld.example/tasks", "", 50)

		_, err := client.ListTasks(ctx)
		require.ErrorIs(t, err, ErrNoToken)
		assert.Empty(t, httpClient.gotURL)
	})

	t.Run("transport failure is wrapped", func(t *testing.T) {
		httpClient := &fakeHTTPClient{err: errors.New("connection reset")}
		client := NewClient(httpClient, "https://makerworld.example/tasks", "session-token", 50)

		_, err := client.ListTasks(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}
