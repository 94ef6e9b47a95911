// Package jwt provides JSON Web Token utilities for the Scrim API.
//
// Tokens are signed with RS256. The service loads its RSA key pair from
// PEM files and stamps every token with the configured issuer and
// expiration.
//
// # Signing
//
//	service, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "./keys/private.pem",
//	    PublicKeyPath:  "./keys/public.pem",
//	    Issuer:         "scrim-api.riftly.gg",
//	    ExpirationMins: 30,
//	})
//
//	token, err := service.Sign(jwt.Claims{
//	    Subject: userID,
//	    UserID:  userID,
//	    Email:   email,
//	})
//
// # Validation
//
// Validate verifies the signature, expiration, and issuer before
// returning the claims:
//
//	claims, err := service.Validate(tokenString)
//	if err != nil {
//	    // jwt.ErrTokenExpired, jwt.ErrInvalidSignature, ...
//	}
//	userID := claims.UserID
//
// A service constructed with only a public key can validate tokens but
// not sign them.
package jwt
