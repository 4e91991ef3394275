package domain

import "strings"

const unknownDevice = "unknown"

// Метки классификации железа
const (
	HardwarePowerPC      = "PowerPC (Vintage)"
	HardwareAppleSilicon = "Apple Silicon (Modern)"
	HardwareX86Retro     = "x86 Retro (Vintage)"
	HardwareX86Modern    = "x86-64 (Modern)"
	HardwareUnknown      = "Unknown/Other"
)

// ClassifyHardware — чистая функция от (family, arch).
// Сравнение идет в нижнем регистре, а в метку PowerPC попадает исходная арка в верхнем.
func ClassifyHardware(family, arch *string) string {
	titleArch := orUnknown(arch)
	fam := strings.ToLower(orUnknown(family))
	a := strings.ToLower(titleArch)

	switch {
	case strings.Contains(fam, "powerpc") || strings.Contains(fam, "ppc"):
		switch a {
		case "g3", "g4", "g5":
			return "PowerPC " + strings.ToUpper(titleArch) + " (Vintage)"
		}
		return HardwarePowerPC
	case strings.Contains(fam, "apple") || isAppleSiliconArch(a):
		return HardwareAppleSilicon
	case strings.Contains(fam, "x86") || strings.Contains(fam, "modern"):
		if strings.Contains(a, "retro") || strings.Contains(a, "core2") {
			return HardwareX86Retro
		}
		return HardwareX86Modern
	default:
		return HardwareUnknown
	}
}

func isAppleSiliconArch(a string) bool {
	switch a {
	case "m1", "m2", "m3", "apple_silicon":
		return true
	}
	return false
}

// orUnknown: NULL и пустая строка считаются "unknown"
func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return unknownDevice
	}
	return *s
}
