package errors

// GetRootCause returns the deepest underlying error in the chain.
func GetRootCause(err error) error {
	chain := GetErrorChain(err)
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// GetErrorChain returns all errors in the chain from outermost to innermost.
func GetErrorChain(err error) []error {
	var chain []error
	for err != nil {
		chain = append(chain, err)
		wrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = wrapper.Unwrap()
	}
	return chain
}

// HasErrorCode checks if any error in the chain has the specified code.
func HasErrorCode(err error, code string) bool {
	for _, e := range GetErrorChain(err) {
		if we, ok := e.(*WikiError); ok && we.Code == code {
			return true
		}
	}
	return false
}

// Code returns the code of the outermost WikiError in the chain.
func Code(err error) string {
	var we *WikiError
	if As(err, &we) {
		return we.Code
	}
	return ""
}

// WithLocationInfo sets the location of the outermost WikiError in the
// chain, or wraps err as a parse error at that location.
func WithLocationInfo(err error, line, column int) error {
	if err == nil {
		return nil
	}
	var we *WikiError
	if As(err, &we) {
		we.WithLocation(line, column)
		return err
	}
	return NewParseError(ErrCodeSyntax, err.Error(), err).WithLocation(line, column)
}
