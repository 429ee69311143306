package health

// Status is the tri-state result of one health check.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusAbsent   Status = "absent"
)

// Check names, in report order.
const (
	CheckRuntime  = "runtime"
	CheckServices = "services"
	CheckEndpoint = "endpoint"
)

// CheckResult captures one check's outcome with diagnostic detail.
type CheckResult struct {
	Name   string
	Status Status
	Detail string
}

// Report is a point-in-time composite health verdict. It always carries every
// check's individual result so operators can diagnose partial failures.
type Report struct {
	Checks  []CheckResult
	Healthy bool
}

// Check returns the named check's result.
func (r Report) Check(name string) (CheckResult, bool) {
	for _, check := range r.Checks {
		if check.Name == name {
			return check, true
		}
	}
	return CheckResult{}, false
}

func composite(checks []CheckResult) bool {
	for _, check := range checks {
		if check.Status != StatusOK {
			return false
		}
	}
	return len(checks) > 0
}
