package svd

// DeviceElement is the subset of a CMSIS-SVD device description needed to
// enumerate interrupts.
type DeviceElement struct {
	Name        string             `xml:"name"`
	Description string             `xml:"description"`
	Series      string             `xml:"series"`
	Version     string             `xml:"version"`
	Vendor      string             `xml:"vendor"`
	CPU         CPUElement         `xml:"cpu"`
	BitWidth    Integer            `xml:"width"`
	Peripherals PeripheralsElement `xml:"peripherals"`
}

type CPUElement struct {
	Name     string `xml:"name"`
	Revision string `xml:"revision"`
	Endian   string `xml:"endian"`
}

type PeripheralsElement struct {
	Elements []PeripheralElement `xml:"peripheral"`
}

type PeripheralElement struct {
	Name        string             `xml:"name"`
	Description string             `xml:"description"`
	Group       string             `xml:"groupName"`
	BaseAddress Integer            `xml:"baseAddress"`
	Interrupts  []InterruptElement `xml:"interrupt"`
	DerivedFrom string             `xml:"derivedFrom,attr"`
}

type InterruptElement struct {
	Name        string  `xml:"name"`
	Description string  `xml:"description"`
	Value       Integer `xml:"value"`
}

// Interrupts returns every interrupt declared by any peripheral, in
// declaration order. Peripherals sharing an interrupt line each list it, so
// the result can contain the same element more than once.
func (d *DeviceElement) Interrupts() []InterruptElement {
	var result []InterruptElement
	for _, periph := range d.Peripherals.Elements {
		result = append(result, periph.Interrupts...)
	}
	return result
}
