//go:build !windows

package probe

import "errors"

var errNoWMI = errors.New("wmi is only available on windows")

type noWMI struct{}

func (noWMI) Query(string, any) error { return errNoWMI }

func nativeWMI() Querier { return noWMI{} }
