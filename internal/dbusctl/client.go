package dbusctl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const errServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"

// Result classifies the outcome of a remote command.
type Result int

const (
	ResultSuccess Result = iota
	ResultError
	ResultNotRunning
	ResultStartNeeded
)

func (result Result) String() string {
	switch result {
	case ResultSuccess:
		return "success"
	case ResultNotRunning:
		return "not running"
	case ResultStartNeeded:
		return "start needed"
	default:
		return "error"
	}
}

// Caller invokes a method on the running instance.
type Caller interface {
	Call(ctx context.Context, method string) (string, error)
}

type sessionCaller struct{}

func (sessionCaller) Call(ctx context.Context, method string) (string, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return "", fmt.Errorf("connect session bus: %w", err)
	}
	defer conn.Close()

	call := conn.Object(ServiceName, ObjectPath).CallWithContext(ctx, InterfaceName+"."+method, 0)
	if call.Err != nil {
		return "", call.Err
	}
	if method != MethodGetState {
		return "", nil
	}
	var state string
	if err := call.Store(&state); err != nil {
		return "", fmt.Errorf("read state: %w", err)
	}
	return state, nil
}

// Send forwards method to the running instance over the session bus. The
// returned string is the reply of GetState and empty otherwise.
func Send(ctx context.Context, method string, autoStart bool) (Result, string, error) {
	return SendWith(ctx, sessionCaller{}, method, autoStart)
}

// SendWith is Send over an explicit Caller.
func SendWith(ctx context.Context, caller Caller, method string, autoStart bool) (Result, string, error) {
	reply, err := caller.Call(ctx, method)
	if err == nil {
		return ResultSuccess, reply, nil
	}
	return Classify(err, autoStart), "", err
}

// Classify maps a call error to a Result. A missing service means the app is
// not running; autoStart turns that into a request to launch it.
func Classify(err error, autoStart bool) Result {
	if err == nil {
		return ResultSuccess
	}
	if !isServiceUnknown(err) {
		return ResultError
	}
	if autoStart {
		return ResultStartNeeded
	}
	return ResultNotRunning
}

func isServiceUnknown(err error) bool {
	var busErr dbus.Error
	if errors.As(err, &busErr) {
		return busErr.Name == errServiceUnknown
	}
	var busErrPtr *dbus.Error
	if errors.As(err, &busErrPtr) && busErrPtr != nil {
		return busErrPtr.Name == errServiceUnknown
	}
	return strings.Contains(err.Error(), errServiceUnknown)
}
