package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOTPRequestAndVerify(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := &OTPService{Store: newTestStore(t), DevEchoOTP: true}

	code, err := svc.Request(ctx, "(555) 777-8888")
	require.NoError(t, err)
	require.Len(t, code, 6)

	t.Run("wrong code leaves the pending code intact", func(t *testing.T) {
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		require.False(t, svc.Verify(ctx, "5557778888", wrong))
		require.True(t, svc.Verify(ctx, "5557778888", code))
	})

	t.Run("success consumes the code", func(t *testing.T) {
		require.False(t, svc.Verify(ctx, "5557778888", code))
	})
}

func TestOTPVerifyPhoneMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := &OTPService{Store: newTestStore(t), DevEchoOTP: true}

	code, err := svc.Request(ctx, "5551112222")
	require.NoError(t, err)

	require.False(t, svc.Verify(ctx, "5553334444", code))

	// Format differences of the same number must not matter.
	require.True(t, svc.Verify(ctx, "555-111-2222", code))
}

func TestOTPNewRequestReplacesPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := &OTPService{Store: newTestStore(t), DevEchoOTP: true}

	first, err := svc.Request(ctx, "5551112222")
	require.NoError(t, err)
	second, err := svc.Request(ctx, "5559998888")
	require.NoError(t, err)

	require.False(t, svc.Verify(ctx, "5551112222", first))
	require.True(t, svc.Verify(ctx, "5559998888", second))
}

func TestOTPExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &OTPService{
		Store:      newTestStore(t),
		DevEchoOTP: true,
		Now:        func() time.Time { return now },
	}

	code, err := svc.Request(ctx, "5551112222")
	require.NoError(t, err)

	t.Run("still valid just inside the window", func(t *testing.T) {
		now = now.Add(5*time.Minute - time.Second)
		require.True(t, svc.Verify(ctx, "5551112222", code))
	})

	code, err = svc.Request(ctx, "5551112222")
	require.NoError(t, err)

	t.Run("expired codes are treated as absent and deleted", func(t *testing.T) {
		now = now.Add(5*time.Minute + time.Second)
		require.False(t, svc.Verify(ctx, "5551112222", code))

		// Even rewinding the clock cannot revive it.
		now = now.Add(-time.Hour)
		require.False(t, svc.Verify(ctx, "5551112222", code))
	})
}

func TestOTPNoEchoByDefault(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var delivered string
	svc := &OTPService{
		Store: newTestStore(t),
		Sender: SenderFunc(func(ctx context.Context, phone, code string) error {
			delivered = code
			return nil
		}),
	}

	echo, err := svc.Request(ctx, "5551112222")
	require.NoError(t, err)
	require.Empty(t, echo)
	require.Len(t, delivered, 6)
	require.True(t, svc.Verify(ctx, "5551112222", delivered))
}

func TestOTPVerifyEmptyInputs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := &OTPService{Store: newTestStore(t)}

	require.False(t, svc.Verify(ctx, "", "123456"))
	require.False(t, svc.Verify(ctx, "5551112222", ""))
	require.False(t, svc.Verify(ctx, "5551112222", "123456"))
}
