package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zpiroux/dsutils/entity"
)

var uaStrings = []string{
	"Mozilla%2F5.0%20(Macintosh%3B%20Intel%20Mac%20OS%20X%2010_15_7)%20AppleWebKit%2F537.36%20(KHTML%2C%20like%20Gecko)%20Chrome%2F93.0.4577.63%20Safari%2F537.36",
	"Mozilla%2F5.0%20(Linux%3B%20Android%208.0.0%3B%20SM-G930F)%20AppleWebKit%2F537.36%20(KHTML%2C%20like%20Gecko)%20Chrome%2F94.0.4606.50%20Mobile%20Safari%2F537.36",
	"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
	"",
}

func TestParseUserAgent(t *testing.T) {
	ua := ParseUserAgent(uaStrings[0])
	assert.Equal(t, "Chrome", ua.Browser.Name)
	assert.Equal(t, "Macintosh", ua.Platform)
	assert.False(t, ua.Mobile)
	assert.Contains(t, ua.String(), `"name":"Chrome"`)

	ua = ParseUserAgent(uaStrings[1])
	assert.True(t, ua.Mobile)
	assert.False(t, ua.Bot)

	ua = ParseUserAgent(uaStrings[2])
	assert.True(t, ua.Bot)
}

func TestUserAgentFeatures(t *testing.T) {
	f := entity.MustNewFrame(
		entity.NewStringColumn("ua", uaStrings).WithNulls([]bool{false, false, false, true}),
	)
	tr := UserAgentFeatures{Col: "ua", Prefix: "client"}
	out, err := tr.Transform(f)
	require.NoError(t, err)
	assert.Equal(t, append([]string{"ua"}, tr.OutputNames()...), out.Names())

	browser, _ := out.Column("client_Browser")
	assert.Equal(t, "Chrome", browser.Value(0))
	assert.Nil(t, browser.Value(3))

	mobile, _ := out.Column("client_Mobile")
	assert.Equal(t, entity.KindBool, mobile.Kind)
	assert.Equal(t, []any{false, true}, []any{mobile.Value(0), mobile.Value(1)})

	bot, _ := out.Column("client_Bot")
	assert.Equal(t, true, bot.Value(2))
	assert.True(t, bot.IsNull(3))

	assert.Equal(t, "ua_Browser", UserAgentFeatures{Col: "ua"}.OutputNames()[0])

	_, err = UserAgentFeatures{Col: "ua"}.Transform(entity.MustNewFrame(entity.NewIntColumn("ua", []int64{1})))
	assert.ErrorIs(t, err, entity.ErrTypeMismatch)
}
