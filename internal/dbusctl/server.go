package dbusctl

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// Handler receives remote commands. Calls arrive on the bus goroutine.
type Handler interface {
	ToggleTimer()
	ResetTimer()
	ToggleBreak()
	ShowHide()
	State() string
}

// Server owns the service name for the lifetime of the process.
type Server struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

// timerObject is the exported object. Its method set is the bus interface.
type timerObject struct {
	handler Handler
	logger  *slog.Logger
}

func (object *timerObject) ToggleTimer() *dbus.Error {
	object.logger.Debug("remote command", "method", MethodToggleTimer)
	object.handler.ToggleTimer()
	return nil
}

func (object *timerObject) ResetTimer() *dbus.Error {
	object.logger.Debug("remote command", "method", MethodResetTimer)
	object.handler.ResetTimer()
	return nil
}

func (object *timerObject) ToggleBreak() *dbus.Error {
	object.logger.Debug("remote command", "method", MethodToggleBreak)
	object.handler.ToggleBreak()
	return nil
}

func (object *timerObject) ShowHide() *dbus.Error {
	object.logger.Debug("remote command", "method", MethodShowHide)
	object.handler.ShowHide()
	return nil
}

func (object *timerObject) GetState() (string, *dbus.Error) {
	return object.handler.State(), nil
}

// Serve connects to the session bus, exports handler and claims the service
// name. It returns ErrAlreadyRunning when another instance holds the name.
func Serve(handler Handler, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	object := &timerObject{handler: handler, logger: logger}
	if err := conn.Export(object, ObjectPath, InterfaceName); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export timer object: %w", err)
	}
	node := &introspect.Node{
		Name: ObjectPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    InterfaceName,
				Methods: introspect.Methods(object),
				Signals: []introspect.Signal{{
					Name: SignalStateChanged,
					Args: []introspect.Arg{{Name: "state", Type: "s"}},
				}},
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export introspection: %w", err)
	}

	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request name %s: %w", ServiceName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, ErrAlreadyRunning
	}

	logger.Info("d-bus service registered", "name", ServiceName)
	return &Server{conn: conn, logger: logger}, nil
}

// EmitState broadcasts a state change.
func (server *Server) EmitState(state string) {
	if server == nil {
		return
	}
	if err := server.conn.Emit(ObjectPath, InterfaceName+"."+SignalStateChanged, state); err != nil {
		server.logger.Debug("emit state failed", "error", err)
	}
}

// Close releases the name and the connection.
func (server *Server) Close() error {
	if server == nil {
		return nil
	}
	if _, err := server.conn.ReleaseName(ServiceName); err != nil {
		server.logger.Debug("release name failed", "error", err)
	}
	return server.conn.Close()
}
