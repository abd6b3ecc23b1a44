package services

const sampleCSV = `date,product,state,country,customer,sales,quantity
2025-01-15,Vitamin C Serum,CA,USA,Jane Doe,59.99,1
2025-01-16,Hydrating Cleanser,NY,USA,John Smith,49.00,2
`

// SampleCSV is the example file offered for download so users can see the
// expected columns.
func SampleCSV() []byte {
	return []byte(sampleCSV)
}
