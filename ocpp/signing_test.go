package ocpp_test

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"

	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"ocppmsg/ocpp"
	"ocppmsg/signature"
)

type signingSuite struct {
	ecKey *ecdsa.PrivateKey
	edKey ed25519.PrivateKey
	keys  *signature.KeyRing
}

var _ = gc.Suite(&signingSuite{})

func (s *signingSuite) SetUpSuite(c *gc.C) {
	var err error
	s.ecKey, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	c.Assert(err, jc.ErrorIsNil)
	_, s.edKey, err = ed25519.GenerateKey(rand.Reader)
	c.Assert(err, jc.ErrorIsNil)
	s.keys = signature.NewKeyRing()
	c.Assert(s.keys.Add("cp-ec", s.ecKey.Public()), jc.ErrorIsNil)
	c.Assert(s.keys.Add("cp-ed", s.edKey.Public()), jc.ErrorIsNil)
}

func (s *signingSuite) TestSignedJSONSurvivesTransport(c *gc.C) {
	request := ocpp.NewRequest(echoRequest{Text: "hi", Count: 1})
	signed, err := echo.SignRequest(request, ocpp.FormatJSON, "cp-ec", s.ecKey)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(request.IsSigned(), jc.IsFalse)
	c.Assert(signed.Signatures(), gc.HasLen, 1)
	c.Check(signed.Signatures()[0].SigningMethod, gc.Equals, signature.MethodES256)

	data, err := echo.RequestToJSON(signed).Bytes()
	c.Assert(err, jc.ErrorIsNil)
	received, err := echo.ParseRequestJSON(parseJSON(c, string(data)), ocpp.RequestMeta{})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(received.Signatures(), gc.HasLen, 1)
	c.Check(received.Signatures()[0].Equal(signed.Signatures()[0]), jc.IsTrue)

	status := echo.VerifyRequest(received, ocpp.FormatJSON, s.keys, signature.PolicyAll)
	c.Check(status, gc.Equals, signature.Verified)
}

func (s *signingSuite) TestTamperedJSONFails(c *gc.C) {
	request := ocpp.NewRequest(echoRequest{Text: "hi", Count: 1})
	signed, err := echo.SignRequest(request, ocpp.FormatJSON, "cp-ed", s.edKey)
	c.Assert(err, jc.ErrorIsNil)

	obj := echo.RequestToJSON(signed)
	obj["count"] = 2
	received, err := echo.ParseRequestJSON(obj, ocpp.RequestMeta{})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(echo.VerifyRequest(received, ocpp.FormatJSON, s.keys, signature.PolicyAll), gc.Equals, signature.Failed)
}

func (s *signingSuite) TestUnsigned(c *gc.C) {
	request := ocpp.NewRequest(echoRequest{Text: "hi"})
	c.Check(echo.VerifyRequest(request, ocpp.FormatJSON, s.keys, signature.PolicyAll), gc.Equals, signature.Unsigned)
}

func (s *signingSuite) TestSignaturesAreNotPartOfCanonicalForm(c *gc.C) {
	request := ocpp.NewRequest(echoRequest{Text: "hi", Count: 1})
	once, err := echo.SignRequest(request, ocpp.FormatJSON, "cp-ec", s.ecKey)
	c.Assert(err, jc.ErrorIsNil)
	twice, err := echo.SignRequest(once, ocpp.FormatJSON, "cp-ed", s.edKey)
	c.Assert(err, jc.ErrorIsNil)

	c.Check(echo.VerifyRequest(twice, ocpp.FormatJSON, s.keys, signature.PolicyAll), gc.Equals, signature.Verified)
	plain, err := echo.CanonicalRequest(request, ocpp.FormatJSON)
	c.Assert(err, jc.ErrorIsNil)
	signedForm, err := echo.CanonicalRequest(twice, ocpp.FormatJSON)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(string(signedForm), gc.Equals, string(plain))
}

func (s *signingSuite) TestPolicyWithUntrustedSigner(c *gc.C) {
	stranger, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	c.Assert(err, jc.ErrorIsNil)
	request := ocpp.NewRequest(echoRequest{Text: "hi", Count: 1})
	signed, err := echo.SignRequest(request, ocpp.FormatJSON, "cp-ec", s.ecKey)
	c.Assert(err, jc.ErrorIsNil)
	signed, err = echo.SignRequest(signed, ocpp.FormatJSON, "stranger", stranger)
	c.Assert(err, jc.ErrorIsNil)

	c.Check(echo.VerifyRequest(signed, ocpp.FormatJSON, s.keys, signature.PolicyAll), gc.Equals, signature.Failed)
	c.Check(echo.VerifyRequest(signed, ocpp.FormatJSON, s.keys, signature.PolicyAtLeastOne), gc.Equals, signature.Verified)
}

func (s *signingSuite) TestXMLSignatures(c *gc.C) {
	request := ocpp.NewRequest(echoRequest{Text: "hi", Count: 1})
	signed, err := echo.SignRequest(request, ocpp.FormatXML, "cp-ed", s.edKey)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(echo.VerifyRequest(signed, ocpp.FormatXML, s.keys, signature.PolicyAll), gc.Equals, signature.Verified)
	c.Check(echo.VerifyRequest(signed, ocpp.FormatJSON, s.keys, signature.PolicyAll), gc.Equals, signature.Failed)
}

func (s *signingSuite) TestSignResponse(c *gc.C) {
	request := ocpp.NewRequest(echoRequest{Text: "hi"})
	response := ocpp.NewResponse(request, echoResponse{Text: "hi"})
	signed, err := echo.SignResponse(response, ocpp.FormatJSON, "cp-ec", s.ecKey)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(response.IsSigned(), jc.IsFalse)
	c.Check(echo.VerifyResponse(signed, ocpp.FormatJSON, s.keys, signature.PolicyAll), gc.Equals, signature.Verified)

	decoded, err := echo.ParseResponseJSON(request, echo.ResponseToJSON(signed))
	c.Assert(err, jc.ErrorIsNil)
	c.Check(echo.VerifyResponse(decoded, ocpp.FormatJSON, s.keys, signature.PolicyAll), gc.Equals, signature.Verified)
}

func (s *signingSuite) TestSignRequiresKeyId(c *gc.C) {
	_, err := echo.SignRequest(ocpp.NewRequest(echoRequest{Text: "hi"}), ocpp.FormatJSON, "", s.edKey)
	c.Check(err, gc.ErrorMatches, "signing Echo request: empty key id not valid")
}
