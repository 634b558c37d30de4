package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strconv"
)

// ErrAlreadyRunning indicates another instance holds the instance lock.
var ErrAlreadyRunning = errors.New("instance already running")

// InstanceLock is a loopback listener held for the life of the process. It
// detects a second instance where no session bus can arbitrate.
type InstanceLock struct {
	listener net.Listener
}

// AcquireInstanceLock binds a port derived from appID.
func AcquireInstanceLock(appID string) (*InstanceLock, error) {
	return acquireLockAt(net.JoinHostPort("127.0.0.1", strconv.Itoa(lockPort(appID))))
}

func acquireLockAt(address string) (*InstanceLock, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAlreadyRunning, err)
	}
	return &InstanceLock{listener: listener}, nil
}

// Release frees the lock. It is safe on a nil lock.
func (lock *InstanceLock) Release() error {
	if lock == nil || lock.listener == nil {
		return nil
	}
	err := lock.listener.Close()
	lock.listener = nil
	return err
}

// Address returns the bound address.
func (lock *InstanceLock) Address() string {
	if lock == nil || lock.listener == nil {
		return ""
	}
	return lock.listener.Addr().String()
}

func lockPort(appID string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appID))
	return minPort + int(hash.Sum32()%uint32(maxPort-minPort+1))
}
