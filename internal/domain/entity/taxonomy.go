package entity

// IssueType is the issue code understood by the reporting application.
type IssueType string

const (
	IssuePothole           IssueType = "POTHOLE"
	IssueGarbage           IssueType = "GARBAGE"
	IssueIllegalParking    IssueType = "ILLEGAL_PARKING"
	IssueDamagedSign       IssueType = "DAMAGED_SIGN"
	IssueFallenTree        IssueType = "FALLEN_TREE"
	IssueVandalism         IssueType = "VANDALISM"
	IssueDeadAnimal        IssueType = "DEAD_ANIMAL"
	IssueDamagedConcrete   IssueType = "DAMAGED_CONCRETE"
	IssueDamagedElectrical IssueType = "DAMAGED_ELECTRICAL"
)

// TaxonomyEntry pairs a model class label with its issue code.
type TaxonomyEntry struct {
	ClassName string    `json:"className"`
	IssueType IssueType `json:"issueType"`
	Label     string    `json:"label"`
}

var taxonomy = []TaxonomyEntry{
	{ClassName: "Potholes and Road Damage", IssueType: IssuePothole, Label: "pothole or road damage"},
	{ClassName: "Littering", IssueType: IssueGarbage, Label: "garbage or littering"},
	{ClassName: "Illegal Parking Issues", IssueType: IssueIllegalParking, Label: "illegal parking"},
	{ClassName: "Broken Road Sign Issues", IssueType: IssueDamagedSign, Label: "damaged road sign"},
	{ClassName: "Fallen trees", IssueType: IssueFallenTree, Label: "fallen tree"},
	{ClassName: "Vandalism Issues", IssueType: IssueVandalism, Label: "vandalism or graffiti"},
	{ClassName: "Dead Animal Pollution", IssueType: IssueDeadAnimal, Label: "dead animal"},
	{ClassName: "Damaged concrete structures", IssueType: IssueDamagedConcrete, Label: "damaged concrete structure"},
	{ClassName: "Damaged Electric wires and poles", IssueType: IssueDamagedElectrical, Label: "damaged electrical pole or wire"},
}

var (
	byClassName = make(map[string]TaxonomyEntry, len(taxonomy))
	byIssueType = make(map[IssueType]TaxonomyEntry, len(taxonomy))
)

func init() {
	for _, e := range taxonomy {
		byClassName[e.ClassName] = e
		byIssueType[e.IssueType] = e
	}
}

// IssueCode maps a model class label to its issue code. ok is false for unmapped labels.
func IssueCode(className string) (IssueType, bool) {
	e, ok := byClassName[className]
	return e.IssueType, ok
}

// ClassNameFor is the reverse lookup of IssueCode.
func ClassNameFor(code IssueType) (string, bool) {
	e, ok := byIssueType[code]
	return e.ClassName, ok
}

// TaxonomyEntries returns a copy of the table in its fixed order.
func TaxonomyEntries() []TaxonomyEntry {
	out := make([]TaxonomyEntry, len(taxonomy))
	copy(out, taxonomy)
	return out
}

// Label returns the human readable name of the issue, or a generic one for unknown codes.
func (t IssueType) Label() string {
	if e, ok := byIssueType[t]; ok {
		return e.Label
	}
	return "municipal issue"
}

// Valid reports whether the code belongs to the taxonomy.
func (t IssueType) Valid() bool {
	_, ok := byIssueType[t]
	return ok
}
