package sqlinline

// Upsert keyed by (job_id, directory_id). A null response log keeps the
// previous diagnostic payload so a processing transition does not erase the
// last attempt's record.
const QUpsertDirectoryResult = `--sql 241ae40c-0ed8-4cc9-a4a3-93997e203a17
insert into directory_results (job_id, directory_id, status, attempt_count, response_log, submitted_at, failed_at)
values (
    $1, $2, $3, $4, $5,
    case when $3 = 'submitted' then now() end,
    case when $3 = 'failed' then now() end
)
on conflict (job_id, directory_id) do update set
    status = excluded.status,
    attempt_count = excluded.attempt_count,
    response_log = coalesce(excluded.response_log, directory_results.response_log),
    submitted_at = coalesce(excluded.submitted_at, directory_results.submitted_at),
    failed_at = case when excluded.status = 'failed' then now() else directory_results.failed_at end;
`

const QReArmDirectory = `--sql 293ebf8a-6ee3-4c9e-992e-91fedfb59d18
update directory_results
set status = 'pending'
where job_id = $1
    and directory_id = $2
    and status = 'failed';
`

const QListDirectoryResults = `--sql f5415e93-6ae3-43e1-961a-98d29a27ece0
select job_id, directory_id, status, attempt_count, response_log, submitted_at, failed_at
from directory_results
where job_id = $1
order by directory_id asc;
`

// Processing rows of in_progress jobs whose token is gone are orphans; flip
// them back to pending so the next cycle re-dispatches the job.
const QRequeueOrphanedDirectories = `--sql 9856e139-465f-42b5-9cdc-eddeae6b7887
update directory_results dr
set status = 'pending'
from submission_jobs j
where dr.job_id = j.id
    and j.status = 'in_progress'
    and dr.status = 'processing'
    and not (j.id = any($1::text[]));
`
