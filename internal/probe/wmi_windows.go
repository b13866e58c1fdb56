package probe

import "github.com/yusufpapurcu/wmi"

type wmiClient struct{}

func (wmiClient) Query(query string, dst any) error {
	return wmi.Query(query, dst)
}

func nativeWMI() Querier { return wmiClient{} }
