package uid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/uid"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "canonical", raw: "92d90d3d-cb16-48cd-8796-87fb9a6da86f", want: "92d90d3d-cb16-48cd-8796-87fb9a6da86f"},
		{name: "upper case is normalized", raw: "92D90D3D-CB16-48CD-8796-87FB9A6DA86F", want: "92d90d3d-cb16-48cd-8796-87fb9a6da86f"},
		{name: "empty", raw: "", wantErr: true},
		{name: "garbage", raw: "not-a-uuid", wantErr: true},
		{name: "too short", raw: "92d90d3d-cb16-48cd-8796", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uid.Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, models.ErrInvalidID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
