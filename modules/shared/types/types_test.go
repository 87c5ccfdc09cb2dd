package types_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

func TestParseID(t *testing.T) {
	id := types.NewUserID()

	parsed, err := types.ParseUserID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = types.ParseUserID("not-a-uuid")
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestID_ScanAndValue(t *testing.T) {
	id := types.NewID[types.ProgramKind]()

	v, err := id.Value()
	require.NoError(t, err)
	assert.Equal(t, id.String(), v)

	var scanned types.ProgramID
	require.NoError(t, scanned.Scan([]byte(id.String())))
	assert.Equal(t, id, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())

	zero, err := types.ProgramID{}.Value()
	require.NoError(t, err)
	assert.Nil(t, zero)
}

func TestID_JSON(t *testing.T) {
	type payload struct {
		ID types.PackageID `json:"id"`
	}
	in := payload{ID: types.NewID[types.PackageKind]()}

	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in.ID, out.ID)
}

func TestMoney(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		currency string
		wantErr  error
	}{
		{"valid", 2999, "usd", nil},
		{"missing currency", 100, "", types.ErrCurrencyRequired},
		{"bad currency", 100, "EURO", types.ErrCurrencyInvalid},
		{"negative", -1, "USD", types.ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := types.NewMoney(tt.amount, tt.currency)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "USD", m.Currency())
		})
	}
}

func TestMoney_Percent(t *testing.T) {
	price := types.MustNewMoney(2999, "EGP")

	fee := price.Percent(1500)
	assert.Equal(t, int64(450), fee.Amount())

	payout, err := price.Subtract(fee)
	require.NoError(t, err)
	assert.Equal(t, int64(2549), payout.Amount())
	assert.Equal(t, "29.99 EGP", price.String())
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, types.Page{Number: 1, Size: 20}, types.NewPage(0, 0))
	assert.Equal(t, types.Page{Number: 3, Size: 100}, types.NewPage(3, 500))
	assert.Equal(t, 40, types.NewPage(3, 20).Offset())

	huge := types.NewPage(math.MaxInt/10, 20)
	assert.Equal(t, types.MaxPageNumber, huge.Number)
	assert.Positive(t, huge.Offset())
	assert.LessOrEqual(t, huge.Offset(), math.MaxInt32)
	assert.Equal(t, 0, types.Page{Number: -5, Size: 20}.Offset())
}

func TestParseRole(t *testing.T) {
	r, err := types.ParseRole("trainer")
	require.NoError(t, err)
	assert.Equal(t, types.RoleTrainer, r)

	_, err = types.ParseRole("coach")
	assert.ErrorIs(t, err, types.ErrInvalidRole)
}

func TestMoney_SubtractRejectsMixedCurrencies(t *testing.T) {
	_, err := types.MustNewMoney(100, "egp").Subtract(types.MustNewMoney(50, "USD"))
	assert.ErrorIs(t, err, types.ErrCurrencyMismatch)
}

func TestMoney_Add(t *testing.T) {
	sum, err := types.MustNewMoney(150, "EGP").Add(types.MustNewMoney(50, "EGP"))
	require.NoError(t, err)
	assert.Equal(t, "2.00 EGP", sum.String())
}
