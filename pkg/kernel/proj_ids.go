package kernel

// WorkerID is the worker's national ID (cédula)
type WorkerID string

func NewWorkerID(id string) WorkerID { return WorkerID(id) }
func (w WorkerID) String() string    { return string(w) }
func (w WorkerID) IsEmpty() bool     { return string(w) == "" }

type VacancyID string

func NewVacancyID(id string) VacancyID { return VacancyID(id) }
func (v VacancyID) String() string     { return string(v) }
func (v VacancyID) IsEmpty() bool      { return string(v) == "" }

type MatchID string

func NewMatchID(id string) MatchID { return MatchID(id) }
func (m MatchID) String() string   { return string(m) }
func (m MatchID) IsEmpty() bool    { return string(m) == "" }

type ProposalID string

func NewProposalID(id string) ProposalID { return ProposalID(id) }
func (p ProposalID) String() string      { return string(p) }
func (p ProposalID) IsEmpty() bool       { return string(p) == "" }

// TaskID identifies an async generation task
type TaskID string

func NewTaskID(id string) TaskID { return TaskID(id) }
func (t TaskID) String() string  { return string(t) }
func (t TaskID) IsEmpty() bool   { return string(t) == "" }
