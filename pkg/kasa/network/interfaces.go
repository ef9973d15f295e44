package network

import (
	"net"
	"strconv"
)

// InterfaceAddr is one IPv4 address assigned to a local interface.
type InterfaceAddr struct {
	Name string
	IP   net.IP
	Mask net.IPMask
}

func (a InterfaceAddr) String() string {
	ones, _ := a.Mask.Size()
	if a.Name == "" {
		return a.IP.String()
	}
	return a.Name + " " + a.IP.String() + "/" + strconv.Itoa(ones)
}

// LocalInterfaces lists IPv4 addresses of interfaces that are up and not
// loopback. If names is non-empty only those interfaces are considered.
func LocalInterfaces(names ...string) ([]InterfaceAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	allow := make(map[string]bool, len(names))
	for _, n := range names {
		allow[n] = true
	}

	var res []InterfaceAddr
	for _, iface := range ifaces {
		if len(allow) > 0 && !allow[iface.Name] {
			continue
		}
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			res = append(res, InterfaceAddr{Name: iface.Name, IP: ipnet.IP.To4(), Mask: ipnet.Mask})
		}
	}
	return res, nil
}
