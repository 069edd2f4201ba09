package config

type WorkerKeyStruct struct {
	PersistRunsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistRunsQueue: "persist_runs_queue",
}
