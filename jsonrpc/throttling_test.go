package jsonrpc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottling(t *testing.T) {
	t.Parallel()

	t.Run("requests above the limit are rejected", func(t *testing.T) {
		t.Parallel()

		th := NewThrottling(3, time.Millisecond*10)

		var (
			release = make(chan struct{})
			running sync.WaitGroup
			done    sync.WaitGroup
		)

		running.Add(3)
		done.Add(3)

		for i := 0; i < 3; i++ {
			go func() {
				defer done.Done()

				res, err := th.AttemptRequest(context.Background(), func() (interface{}, error) {
					running.Done()
					<-release

					return "held", nil
				})

				require.NoError(t, err)
				assert.Equal(t, "held", res)
			}()
		}

		// every slot is occupied before the extra request is attempted
		running.Wait()

		res, err := th.AttemptRequest(context.Background(), func() (interface{}, error) {
			return nil, nil
		})

		require.ErrorIs(t, err, errRequestLimitExceeded)
		assert.Nil(t, res)

		close(release)
		done.Wait()
	})

	t.Run("slot is released once the handler returns", func(t *testing.T) {
		t.Parallel()

		th := NewThrottling(1, time.Millisecond*10)

		for i := 0; i < 5; i++ {
			res, err := th.AttemptRequest(context.Background(), func() (interface{}, error) {
				return i, nil
			})

			require.NoError(t, err)
			assert.Equal(t, i, res)
		}
	})

	t.Run("handler error is returned unchanged", func(t *testing.T) {
		t.Parallel()

		th := NewThrottling(1, time.Millisecond*10)

		errHandler := errors.New("handler failed")

		res, err := th.AttemptRequest(context.Background(), func() (interface{}, error) {
			return nil, errHandler
		})

		require.ErrorIs(t, err, errHandler)
		assert.Nil(t, res)
	})
}
