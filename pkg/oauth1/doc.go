/*
Package oauth1 implements the HMAC-SHA1 request signing used by LTI 1.x
launches (OAuth 1.0a, RFC 5849 section 3.4, as profiled by the IMS LTI spec).

A launch is signed in three steps:

  - every parameter name and value is percent-encoded per RFC 3986 (Encode);
  - the encoded pairs are sorted by name, and duplicate names by value in
    natural order, then joined with '&' (NormalizeParameters);
  - METHOD, URL and the parameter string are each encoded again and joined
    with '&' to form the base string (BaseString), which is signed with
    HMAC-SHA1 under the key ENC(consumer_secret)+"&" (Sign).

The caller's own oauth_signature parameter is always left out of the base
string.
*/
package oauth1
