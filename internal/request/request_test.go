package request

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "want *ValidationError, got %v", err)
	out := map[string]string{}
	for _, f := range ve.Fields {
		out[f.Field] = f.Reason
	}
	return out
}

const validShipment = `{
  "header": {"service": "AIR", "awbNo": "AWB1", "origin": "BOM", "destination": "DXB",
             "date": "2024-03-01", "boxNumber": 3, "extra": "ignored"},
  "sender": {"name": "S", "address": "Addr", "email": ""},
  "receiver": {"name": "R", "address": "Addr2", "email": "r@x.com"},
  "routing": {"portOfLoading": "Nhava Sheva"},
  "items": [{"desc": "box", "qty": 1}],
  "other": {"pcs": "4", "totalAmount": 1250.5, "billingAmount": "99"},
  "unknownTopLevel": true
}`

func TestDecode_Login_OK(t *testing.T) {
	t.Parallel()

	var l Login
	require.NoError(t, Decode([]byte(`{"email":"a@x.com","password":"secret","other":1}`), &l))
	require.Equal(t, "a@x.com", l.Email)
	require.Equal(t, "secret", l.Password)
	require.Empty(t, l.TenantID)
}

func TestDecode_Login_Errors(t *testing.T) {
	t.Parallel()

	var l Login
	got := fields(t, Decode([]byte(`{"email":"nope","password":""}`), &l))
	require.Contains(t, got, "email")
	require.Contains(t, got, "password")

	got = fields(t, Decode([]byte(`{"email":42,"password":"x"}`), &Login{}))
	require.Equal(t, "must be a string", got["email"])

	got = fields(t, Decode([]byte(`{not json`), &Login{}))
	require.Contains(t, got, "body")

	got = fields(t, Decode(nil, &Login{}))
	require.Equal(t, "is required", got["body"])
}

func TestDecode_Shipment_OK_WithCoercions(t *testing.T) {
	t.Parallel()

	var s Shipment
	require.NoError(t, Decode([]byte(validShipment), &s))

	require.NotNil(t, s.Header.Origin)
	require.Equal(t, "BOM", *s.Header.Origin)
	require.True(t, s.Header.BoxNumber.Set)
	require.Equal(t, "3", s.Header.BoxNumber.Value)
	require.Equal(t, 4.0, s.Other.Pcs.Value)
	require.Equal(t, 1250.5, s.Other.TotalAmount.Value)
	require.Equal(t, 99.0, s.Other.BillingAmount.Value)
	require.Len(t, s.Items, 1)
	require.NotNil(t, s.Sender.Email)
	require.Equal(t, "", *s.Sender.Email)
}

func TestDecode_Shipment_NestedFieldPaths(t *testing.T) {
	t.Parallel()

	body := `{
	  "header": {"origin": null, "boxNumber": "abc"},
	  "sender": {"name": "S", "email": "bad"},
	  "receiver": {"name": "R", "address": "A"},
	  "routing": {},
	  "other": {"totalAmount": "lots"}
	}`
	got := fields(t, Decode([]byte(body), &Shipment{}))

	require.Equal(t, "is required", got["header.origin"])
	require.Equal(t, "is required", got["header.destination"])
	require.Contains(t, got, "sender.address")
	require.Contains(t, got, "sender.email")
	require.Contains(t, got, "items")
	require.Equal(t, "must be a number", got["other.totalAmount"])
	require.NotContains(t, got, "receiver.email")
	require.NotContains(t, got, "header.boxNumber")
}

func TestDecode_Shipment_BlankRequiredStrings(t *testing.T) {
	t.Parallel()

	body := `{
	  "header": {"origin": "", "destination": ""},
	  "sender": {"name": "", "address": ""},
	  "receiver": {"name": "", "address": ""},
	  "routing": {},
	  "items": [],
	  "other": {}
	}`
	var s Shipment
	require.NoError(t, Decode([]byte(body), &s))
	require.NotNil(t, s.Header.Origin)
	require.Equal(t, "", *s.Header.Origin)
	require.NotNil(t, s.Receiver.Address)
}

func TestDecode_Shipment_TypeMismatchPath(t *testing.T) {
	t.Parallel()

	got := fields(t, Decode([]byte(`{"header":{"origin":5}}`), &Shipment{}))
	require.Equal(t, "must be a string", got["header.origin"])
}

func TestText_AnyScalar(t *testing.T) {
	t.Parallel()

	cases := map[string]Text{
		`"7"`:   {Value: "7", Set: true},
		`7`:     {Value: "7", Set: true},
		`true`:  {Value: "true", Set: true},
		`null`:  {},
		`"abc"`: {Value: "abc", Set: true},
	}
	for in, want := range cases {
		var got Text
		require.NoError(t, got.UnmarshalJSON([]byte(in)), in)
		require.Equal(t, want, got, in)
	}
}

func TestNumber_Parse(t *testing.T) {
	t.Parallel()

	var n Number
	require.NoError(t, n.UnmarshalJSON([]byte(`" 12.5 "`)))
	require.Equal(t, 12.5, *n.Ptr())
	require.NoError(t, n.Validate())

	require.NoError(t, n.UnmarshalJSON([]byte(`null`)))
	require.Nil(t, n.Ptr())
	require.NoError(t, n.Validate())

	require.NoError(t, n.UnmarshalJSON([]byte(`{"a":1}`)))
	require.Error(t, n.Validate())

	for _, raw := range []string{`"NaN"`, `"Inf"`, `"-Infinity"`, `"+inf"`, `1e400`} {
		require.NoError(t, n.UnmarshalJSON([]byte(raw)), raw)
		require.EqualError(t, n.Validate(), "must be a number", raw)
		require.Nil(t, n.Ptr(), raw)
	}
}

func TestDecode_Shipment_NonFiniteNumbers(t *testing.T) {
	t.Parallel()

	body := `{
	  "header": {"origin": "BOM", "destination": "DXB"},
	  "sender": {"name": "S", "address": "A"},
	  "receiver": {"name": "R", "address": "B"},
	  "routing": {},
	  "items": [],
	  "other": {"pcs": "NaN", "totalAmount": "Infinity", "billingAmount": "-Inf"}
	}`
	got := fields(t, Decode([]byte(body), &Shipment{}))
	require.Equal(t, "must be a number", got["other.pcs"])
	require.Equal(t, "must be a number", got["other.totalAmount"])
	require.Equal(t, "must be a number", got["other.billingAmount"])
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		page, limit string
		wantP       int
		wantL       int
	}{
		{"", "", 1, 10},
		{"2", "25", 2, 25},
		{"0", "0", 1, 10},
		{"-3", "abc", 1, 10},
		{"5", "1000", 5, 1000},
	}
	for _, c := range cases {
		p, l := ParsePage(c.page, c.limit)
		require.Equal(t, c.wantP, p, "page %q", c.page)
		require.Equal(t, c.wantL, l, "limit %q", c.limit)
	}
}

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Fields: []FieldError{{Field: "a", Reason: "bad"}, {Field: "b.c", Reason: "worse"}}}
	require.Equal(t, "validation: a: bad; b.c: worse", err.Error())
}

func TestNewUser_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, FromValidation(NewUser{Email: "a@x.com", Password: "secret"}.Validate()))

	got := fields(t, FromValidation(NewUser{Email: "a", Password: "123"}.Validate()))
	require.Contains(t, got, "email")
	require.Contains(t, got, "password")
}
