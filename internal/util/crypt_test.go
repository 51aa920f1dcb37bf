package util

import (
	"testing"

	"github.com/RoyceAzure/lab/authkeeper/internal/constants"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	password := "Sup3rSecret"

	hashed, err := HashPassword(password, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hashed)
	require.NotEqual(t, password, hashed)

	require.True(t, CheckPassword(password, hashed))
	require.False(t, CheckPassword("wrong-password", hashed))
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hashed, err := HashPassword("Sup3rSecret", 999)
	require.NoError(t, err)
	require.True(t, CheckPassword("Sup3rSecret", hashed))
}

func TestValidateStringPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Abcdef12", false},
		{"too short", "Ab1", true},
		{"no upper", "abcdef12", true},
		{"no digit", "Abcdefgh", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStringPassword(tt.password)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("token-a")
	h2 := HashToken("token-a")
	h3 := HashToken("token-b")

	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, h3)
	require.Len(t, h1, 64)
}

func TestInferDeviceType(t *testing.T) {
	tests := []struct {
		ua   string
		want constants.DeviceType
	}{
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148", constants.DeviceTypeMobile},
		{"Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)", constants.DeviceTypeTablet},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", constants.DeviceTypeDesktop},
		{"", constants.DeviceTypeUnknown},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, InferDeviceType(tt.ua), tt.ua)
	}
}
