//go:build !windows

package credentials

// ReadFromStore leaves the credentials untouched; there is no credential
// store on this platform and the configuration file is used instead.
func (this *Credentials) ReadFromStore() (supported bool, err error) {
	return false, nil
}

func (this *Credentials) WriteToStore() (supported bool, err error) {
	return false, nil
}
