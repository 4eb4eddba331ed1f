//go:build !nogpu

package gpu

import "github.com/gogpu/gputypes"

// AdapterInfo describes one adapter visible to the Vulkan backend.
type AdapterInfo struct {
	Name     string
	Kind     string
	Selected bool
}

// Adapters lists the adapters New would choose from. The adapter New picks
// is marked Selected.
func Adapters() ([]AdapterInfo, error) {
	instance, selected, err := openInstance()
	if err != nil {
		return nil, err
	}
	defer instance.Destroy()

	exposed := instance.EnumerateAdapters(nil)
	out := make([]AdapterInfo, 0, len(exposed))
	for i := range exposed {
		info := exposed[i].Info
		out = append(out, AdapterInfo{
			Name:     info.Name,
			Kind:     deviceKind(info.DeviceType),
			Selected: info.Name == selected.Info.Name && info.DeviceType == selected.Info.DeviceType,
		})
	}
	return out, nil
}

func deviceKind(t gputypes.DeviceType) string {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return "discrete"
	case gputypes.DeviceTypeIntegratedGPU:
		return "integrated"
	default:
		return "other"
	}
}
