// pkg/deploy/deferral.go - persisted deferral count for interactive runs.

package deploy

import (
	"golang.org/x/sys/windows/registry"
)

const deferralKeyPath = `SOFTWARE\AnsysDeploy\Deferrals`

// RegistryDeferralStore keeps the deferral count under HKLM so it
// survives across runs and users.
type RegistryDeferralStore struct {
	keyPath string
}

// NewRegistryDeferralStore returns the production deferral store.
func NewRegistryDeferralStore() *RegistryDeferralStore {
	return &RegistryDeferralStore{keyPath: deferralKeyPath}
}

// Count returns how many times the deployment has been deferred.
// A missing key means zero.
func (s *RegistryDeferralStore) Count() (int, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, s.keyPath, registry.QUERY_VALUE)
	if err == registry.ErrNotExist {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer key.Close()

	val, _, err := key.GetIntegerValue("Count")
	if err == registry.ErrNotExist {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(val), nil
}

// Increment records one more deferral.
func (s *RegistryDeferralStore) Increment() error {
	count, err := s.Count()
	if err != nil {
		return err
	}

	key, _, err := registry.CreateKey(registry.LOCAL_MACHINE, s.keyPath, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer key.Close()

	return key.SetDWordValue("Count", uint32(count+1))
}

// Clear resets the deferral count after a deployment proceeds.
func (s *RegistryDeferralStore) Clear() error {
	err := registry.DeleteKey(registry.LOCAL_MACHINE, s.keyPath)
	if err == registry.ErrNotExist {
		return nil
	}
	return err
}
