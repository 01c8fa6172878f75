package barter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestCodecPlainStruct(t *testing.T) {
	c := jsonCodec{}
	data, err := c.Marshal(&SwipeRequest{UserID: 1, OfferedItemID: 2, CandidateItemID: 3, Direction: "right"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":1,"offered_item_id":2,"candidate_item_id":3,"direction":"right"}`, string(data))

	var out SwipeRequest
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, "right", out.Direction)
	assert.Equal(t, uint64(3), out.CandidateItemID)
}

func TestCodecProtoMessage(t *testing.T) {
	c := jsonCodec{}
	data, err := c.Marshal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING})
	require.NoError(t, err)
	assert.Contains(t, string(data), "SERVING")

	var out healthpb.HealthCheckResponse
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, out.GetStatus())
}

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/barter.BarterService/Swipe", FullMethod("Swipe"))
	assert.Len(t, ServiceDesc.Methods, 13)
}
