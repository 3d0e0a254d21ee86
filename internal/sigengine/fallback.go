package sigengine

type fallbackEngine struct {
	primary   Engine
	secondary Engine
}

// WithFallback wraps two engines: every operation runs on primary first and is
// retried on secondary only when primary reports a capability error. Invalid
// signatures, bad key material, and every other failure pass through
// unretried.
func WithFallback(primary, secondary Engine) Engine {
	return &fallbackEngine{primary: primary, secondary: secondary}
}

func (e *fallbackEngine) Sign(message, privateKey []byte) ([]byte, error) {
	sig, err := e.primary.Sign(message, privateKey)
	if err != nil && IsCapabilityError(err) {
		return e.secondary.Sign(message, privateKey)
	}
	return sig, err
}

func (e *fallbackEngine) Verify(signature, message, publicKey []byte) (bool, error) {
	ok, err := e.primary.Verify(signature, message, publicKey)
	if err != nil && IsCapabilityError(err) {
		return e.secondary.Verify(signature, message, publicKey)
	}
	return ok, err
}
