package reposstate

import "fmt"

func errNotSupported(requested, only string) error {
	return fmt.Errorf("only operations on %s are supported, got %s", only, requested)
}

func errNotSupportedOp(op, state string) error {
	return fmt.Errorf("%s is not supported by %s", op, state)
}

func errNotFound(fileName string) error {
	return fmt.Errorf("%s: no such file", fileName)
}
