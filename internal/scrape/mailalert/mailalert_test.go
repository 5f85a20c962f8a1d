package mailalert

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alertMail = "From: alerts@yard.example\r\n" +
	"Subject: New Dodge arrivals\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"New arrivals this week:\r\n" +
	"\r\n" +
	"2001 Dodge Ram 1500 - Stock #9912 - https://yard.example/v/9912\r\n" +
	"1997 Dodge Dakota - Stock #7341\r\n" +
	"Visit us at the yard!\r\n" +
	"2003 Dodge Ram 2500 - https://yard.example/v/5550?utm_source=mail\r\n"

func TestParseAlert_OneVehiclePerLine(t *testing.T) {
	s := New(Config{Location: "Calgary"}, zerolog.Nop())

	got := s.parseAlert(message{
		Raw:  []byte(alertMail),
		Date: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
	})
	require.Len(t, got, 3, "greeting and footer lines are not vehicles")

	first := got[0]
	assert.Equal(t, "mailalert", first.Source)
	assert.Equal(t, "9912", first.ExternalID)
	assert.Equal(t, "2001 Dodge Ram 1500", first.Title)
	assert.Equal(t, 2001, first.Year)
	assert.Equal(t, "Dodge", first.Make)
	assert.Equal(t, "Ram 1500", first.Model)
	assert.Equal(t, "Calgary", first.Location)
	assert.Equal(t, "https://yard.example/v/9912", first.URL)
	assert.Equal(t, "2026-08-20", first.ArrivalDate)

	assert.Equal(t, "7341", got[1].ExternalID, "stock number alone is enough identity")
	assert.Equal(t, "", got[1].URL)

	assert.Equal(t, "", got[2].ExternalID, "link alone is enough identity")
	assert.Contains(t, got[2].URL, "/v/5550")
}

func TestParseAlert_LocationHeaderScopesFollowingLines(t *testing.T) {
	raw := "From: alerts@yard.example\r\n" +
		"Subject: New Dodge arrivals\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"2005 Dodge Durango - Stock #11\r\n" +
		"Location: Edmonton\r\n" +
		"2001 Dodge Ram 1500 - Stock #12\r\n" +
		"Yard: Red Deer\r\n" +
		"1997 Dodge Dakota - Stock #13\r\n"

	s := New(Config{Location: "Calgary"}, zerolog.Nop())
	got := s.parseAlert(message{Raw: []byte(raw)})
	require.Len(t, got, 3)

	assert.Equal(t, "Calgary", got[0].Location, "configured location covers lines before any header")
	assert.Equal(t, "Edmonton", got[1].Location)
	assert.Equal(t, "Red Deer", got[2].Location)
}

func TestParseAlert_SkipsLinesWithoutIdentity(t *testing.T) {
	s := New(Config{}, zerolog.Nop())
	got := s.parseAlert(message{Raw: []byte(
		"Content-Type: text/plain\r\n\r\n2001 Dodge Ram 1500, ask at the counter\r\n",
	)})
	assert.Empty(t, got)
}

func TestBodyText_PrefersPlainPart(t *testing.T) {
	raw := "From: a@b\r\n" +
		"Content-Type: multipart/alternative; boundary=BOUND\r\n" +
		"\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>2001 Dodge Ram 1500</p>\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"2001 Dodge Ram 1500 - Stock #1\r\n" +
		"--BOUND--\r\n"

	body := bodyText([]byte(raw))
	assert.Contains(t, body, "Stock #1")
	assert.NotContains(t, body, "<p>")
}

func TestBodyText_QuotedPrintable(t *testing.T) {
	raw := "From: a@b\r\n" +
		"Content-Type: text/plain\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"2001 Dodge =\r\nRam 1500\r\n"

	assert.Contains(t, bodyText([]byte(raw)), "2001 Dodge Ram 1500")
}

func TestSubjectMatches(t *testing.T) {
	assert.True(t, subjectMatches("New DODGE arrivals at Pick-n-Pull", []string{"dodge arrivals"}))
	assert.False(t, subjectMatches("Weekly newsletter", []string{"dodge arrivals"}))
	assert.True(t, subjectMatches("anything", nil), "empty needle list matches everything")
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{Host: "imap.example.com"}.Validate())
	assert.NoError(t, Config{Host: "imap.example.com", Username: "bot@example.com"}.Validate())
}
